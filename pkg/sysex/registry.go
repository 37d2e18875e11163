package sysex

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Registry holds the loaded device profiles and their flattened, sorted
// parameter tables. It is immutable after NewRegistry returns and safe for
// concurrent use.
type Registry struct {
	profiles []*Profile
	byKey    map[string]*Profile
	params   map[*Profile][]*Parameter
}

// NewRegistry loads profiles, resolving block-relative parameter addresses
// to absolute ones. It fails if any profile is malformed: duplicate keys or
// model IDs, parameter ranges that overlap, or values that can't be packed
// into the declared size.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[string]*Profile),
		params: make(map[*Profile][]*Parameter),
	}
	for _, p := range profiles {
		if err := r.add(p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level tables; a malformed table is
// a programming error.
func MustRegistry(profiles ...*Profile) *Registry {
	r, err := NewRegistry(profiles...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) add(p *Profile) error {
	key := strings.ToLower(p.Key)
	if key == "" {
		return fmt.Errorf("missing key")
	}
	if _, dup := r.byKey[key]; dup {
		return fmt.Errorf("duplicate key %q", p.Key)
	}
	if len(p.Model) == 0 {
		return fmt.Errorf("missing model ID")
	}
	for _, other := range r.profiles {
		if other.Manufacturer == p.Manufacturer && bytes.Equal(other.Model, p.Model) {
			return fmt.Errorf("model ID %s already used by %s", FormatHex(p.Model), other.Name)
		}
	}
	if p.AddressSize < 1 || p.AddressSize > 4 {
		return fmt.Errorf("address size %d not in 1..4", p.AddressSize)
	}

	var params []*Parameter
	for _, b := range p.Blocks {
		if b.PrefixSize < 0 || b.PrefixSize > p.AddressSize || !b.Prefix.Valid(b.PrefixSize) {
			return fmt.Errorf("block %q: bad prefix %s", b.Name, b.Prefix)
		}
		suffixSize := p.AddressSize - b.PrefixSize
		for i := range b.Params {
			def := b.Params[i]
			if !def.Address.Valid(suffixSize) {
				return fmt.Errorf("block %q, %s: offset %s does not fit %d bytes", b.Name, def.Name, def.Address, suffixSize)
			}
			def.Address = b.Prefix<<(8*uint(suffixSize)) | def.Address
			def.Block = b.Name
			if err := checkParameter(&def); err != nil {
				return fmt.Errorf("%s: %w", def.Path(), err)
			}
			params = append(params, &def)
		}
	}

	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Address.linear() < params[j].Address.linear()
	})
	// Sorted by start, so any overlap shows up between neighbours.
	for i := 1; i < len(params); i++ {
		prev, cur := params[i-1], params[i]
		if prev.Address.linear()+prev.Size > cur.Address.linear() {
			return fmt.Errorf("%s at %s overlaps %s at %s",
				prev.Path(), prev.Address.Format(p.AddressSize), cur.Path(), cur.Address.Format(p.AddressSize))
		}
	}

	r.profiles = append(r.profiles, p)
	r.byKey[key] = p
	r.params[p] = params
	return nil
}

func checkParameter(p *Parameter) error {
	if p.Name == "" {
		return fmt.Errorf("unnamed parameter")
	}
	switch p.Kind {
	case KindEnum:
		if len(p.Labels) == 0 {
			return fmt.Errorf("enum without labels")
		}
		for _, l := range p.Labels {
			if l.Value < p.Min || l.Value > p.Max {
				return fmt.Errorf("label %q value %d outside %d..%d", l.Name, l.Value, p.Min, p.Max)
			}
		}
	case KindBitmask:
		if p.Mask <= 0 {
			return fmt.Errorf("bitmask without bits")
		}
	default:
		if p.Min > p.Max {
			return fmt.Errorf("min %d > max %d", p.Min, p.Max)
		}
	}
	if p.Min < 0 || !p.fits() {
		return fmt.Errorf("range %d..%d does not fit %d byte(s)", p.Min, p.Max, p.Size)
	}
	return nil
}

// Profiles returns the loaded profiles in load order.
func (r *Registry) Profiles() []*Profile {
	return append([]*Profile(nil), r.profiles...)
}

// Profile finds a profile by key ("gs") or name ("Roland GS"), ignoring case.
func (r *Registry) Profile(name string) (*Profile, bool) {
	if p, ok := r.byKey[strings.ToLower(name)]; ok {
		return p, true
	}
	for _, p := range r.profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// ProfileByModel finds the profile for a manufacturer and model ID.
func (r *Registry) ProfileByModel(manufacturer byte, model []byte) (*Profile, bool) {
	for _, p := range r.profiles {
		if p.Manufacturer == manufacturer && bytes.Equal(p.Model, model) {
			return p, true
		}
	}
	return nil, false
}

// Parameters returns the profile's parameters sorted by address.
func (r *Registry) Parameters(p *Profile) []*Parameter {
	return append([]*Parameter(nil), r.params[p]...)
}

// Lookup finds the parameter at addr, either starting there or containing
// it. The offset is addr's byte position within the parameter.
func (r *Registry) Lookup(p *Profile, addr Address) (*Parameter, int, bool) {
	params := r.params[p]
	target := addr.linear()
	i := sort.Search(len(params), func(i int) bool {
		return params[i].Address.linear() > target
	}) - 1
	if i < 0 {
		return nil, 0, false
	}
	param := params[i]
	offset := target - param.Address.linear()
	if offset >= param.Size {
		return nil, 0, false
	}
	return param, offset, true
}

// Block finds the block whose prefix matches addr. It returns the block name
// and the number of leading address bytes the prefix covers.
func (r *Registry) Block(p *Profile, addr Address) (string, int, bool) {
	return p.block(addr)
}

// Find looks up a parameter by name. query may be a qualified path ("Part 1 /
// PART LEVEL"), a bare name that is unique within the profile ("Reverb
// Macro"), or an address ("40 01 30"). Matching ignores case.
func (r *Registry) Find(p *Profile, query string) (*Parameter, error) {
	q := strings.TrimSpace(query)
	params := r.params[p]

	var matches []*Parameter
	for _, param := range params {
		if strings.EqualFold(param.Name, q) || strings.EqualFold(param.Path(), q) {
			matches = append(matches, param)
		}
	}
	if len(matches) == 0 {
		for _, param := range params {
			if matchesPath(param, q) {
				return param, nil
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if addr, err := ParseAddress(q); err == nil {
			if param, offset, ok := r.Lookup(p, addr); ok && offset == 0 {
				return param, nil
			}
		}
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownParameter, query, p.Name)
	default:
		return nil, fmt.Errorf("%q is ambiguous in %s (%d matches, e.g. %q); qualify it with a block name",
			query, p.Name, len(matches), matches[0].Path())
	}
}

// matchesPath reports whether q is "block/name" for param, with any spacing
// around the slash. Names may contain slashes themselves ("MONO/POLY MODE").
func matchesPath(param *Parameter, q string) bool {
	for i := 0; i < len(q); i++ {
		if q[i] != '/' {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(q[:i]), param.Block) &&
			strings.EqualFold(strings.TrimSpace(q[i+1:]), param.Name) {
			return true
		}
	}
	return false
}
