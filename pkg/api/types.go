package api

import (
	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/sysex"
)

// ProfileInfo describes a device profile
type ProfileInfo struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Model         string   `json:"model"`
	DefaultDevice int      `json:"defaultDevice"`
	Blocks        []string `json:"blocks"`
	Parameters    int      `json:"parameters"`
}

// ParameterInfo describes one parameter
type ParameterInfo struct {
	Path    string            `json:"path"`
	Block   string            `json:"block"`
	Name    string            `json:"name"`
	Address string            `json:"address"`
	Size    int               `json:"size"`
	Kind    string            `json:"kind"`
	Min     int               `json:"min"`
	Max     int               `json:"max"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// InspectRequest carries pasted hex text
type InspectRequest struct {
	Hex string `json:"hex" binding:"required"`
}

// MessageInfo is one inspected message
type MessageInfo struct {
	Tick        uint32 `json:"tick"`
	Hex         string `json:"hex"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// InspectResponse is the result of an inspection
type InspectResponse struct {
	Format   string        `json:"format"`
	Summary  string        `json:"summary"`
	Messages []MessageInfo `json:"messages"`
	Events   []string      `json:"events,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// BuildRequest asks for a message setting or requesting one parameter
type BuildRequest struct {
	Profile   string `json:"profile"`
	Device    *int   `json:"device"`
	Parameter string `json:"parameter" binding:"required"`
	Value     string `json:"value"`
	Request   bool   `json:"request"`
}

// BuildResponse is the built message
type BuildResponse struct {
	Hex         string `json:"hex"`
	Description string `json:"description"`
}

func profileInfo(r *sysex.Registry, p *sysex.Profile) ProfileInfo {
	info := ProfileInfo{
		Key:           p.Key,
		Name:          p.Name,
		Model:         sysex.FormatHex(p.Model),
		DefaultDevice: int(p.DefaultDevice),
		Parameters:    len(r.Parameters(p)),
	}
	for _, b := range p.Blocks {
		info.Blocks = append(info.Blocks, b.Name)
	}
	return info
}

func parameterInfo(p *sysex.Profile, param *sysex.Parameter) ParameterInfo {
	info := ParameterInfo{
		Path:    param.Path(),
		Block:   param.Block,
		Name:    param.Name,
		Address: param.Address.Format(p.AddressSize),
		Size:    param.Size,
		Kind:    param.Kind.String(),
		Min:     param.Min,
		Max:     param.Max,
	}
	if len(param.Labels) > 0 {
		info.Labels = make(map[string]string, len(param.Labels))
		for _, l := range param.Labels {
			info.Labels[sysex.FormatHex([]byte{byte(l.Value)})] = l.Name
		}
	}
	return info
}

func inspectResponse(r *converter.Report) InspectResponse {
	resp := InspectResponse{
		Format:   string(r.Format),
		Summary:  r.Summary,
		Messages: []MessageInfo{},
		Events:   r.Events,
		Warnings: r.Warnings,
	}
	for _, m := range r.Messages {
		resp.Messages = append(resp.Messages, MessageInfo{
			Tick:        m.Tick,
			Hex:         sysex.FormatHex(m.Inspection.Raw),
			Status:      m.Inspection.Status.String(),
			Description: m.Inspection.String(),
		})
	}
	return resp
}
