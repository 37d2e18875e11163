// Package api provides the REST API server for soundpalette
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/log"
	"github.com/james-see/soundpalette/pkg/sysex"
	"github.com/james-see/soundpalette/pkg/sysex/devices"
)

// @title soundpalette API
// @version 1.0
// @description API for building and inspecting Roland SysEx messages and packing them into MIDI files
// @host localhost:8080
// @BasePath /api/v1

// Server holds what the handlers share. The registry is read-only, so
// requests need no locking.
type Server struct {
	registry *sysex.Registry
	opts     converter.Options
}

// NewServer creates a server over registry
func NewServer(registry *sysex.Registry, opts converter.Options) *Server {
	return &Server{registry: registry, opts: opts}
}

// Router builds the gin engine with every route
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/profiles", s.listProfiles)
		v1.GET("/profiles/:profile/parameters", s.listParameters)
		v1.POST("/inspect", s.handleInspect)
		v1.POST("/build", s.handleBuild)
		v1.POST("/convert/midi2syx", s.handleMIDIToSyx)
		v1.POST("/convert/syx2midi", s.handleSyxToMIDI)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts converter.Options) error {
	s := NewServer(devices.Default(), opts)
	return s.Router().Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debugf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "soundpalette",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"midi", "syx", "hex"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listProfiles godoc
// @Summary List device profiles
// @Description Returns the device profiles messages can be built for
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]ProfileInfo
// @Router /api/v1/profiles [get]
func (s *Server) listProfiles(c *gin.Context) {
	var out []ProfileInfo
	for _, p := range s.registry.Profiles() {
		out = append(out, profileInfo(s.registry, p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

// listParameters godoc
// @Summary List a profile's parameters
// @Description Returns the parameters of a profile, optionally only those of one block
// @Tags info
// @Produce json
// @Param profile path string true "Profile key, e.g. gs"
// @Param block query string false "Block name, e.g. Patch Part 1"
// @Success 200 {object} map[string][]ParameterInfo
// @Failure 404 {object} map[string]string
// @Router /api/v1/profiles/{profile}/parameters [get]
func (s *Server) listParameters(c *gin.Context) {
	p, ok := s.registry.Profile(c.Param("profile"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown profile %q", c.Param("profile"))})
		return
	}
	block := c.Query("block")
	out := []ParameterInfo{}
	for _, param := range s.registry.Parameters(p) {
		if block != "" && !strings.EqualFold(param.Block, block) {
			continue
		}
		out = append(out, parameterInfo(p, param))
	}
	c.JSON(http.StatusOK, gin.H{"profile": p.Key, "parameters": out})
}

// handleInspect godoc
// @Summary Inspect SysEx messages
// @Description Interprets hex text sent as JSON, or an uploaded .syx, .mid or text file
// @Tags inspect
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body InspectRequest false "Hex text"
// @Param file formData file false "File to inspect"
// @Success 200 {object} InspectResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func (s *Server) handleInspect(c *gin.Context) {
	var (
		data   []byte
		format = converter.FormatUnknown
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		defer func() { _ = file.Close() }()
		if data, err = io.ReadAll(file); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		format = converter.DetectFormat(header.Filename)
	} else {
		var req InspectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data, format = []byte(req.Hex), converter.FormatHex
	}

	conv := converter.New(s.registry, s.opts)
	report, err := conv.Inspect(data, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inspectResponse(report))
}

// handleBuild godoc
// @Summary Build a SysEx message
// @Description Builds a DT1 message setting one parameter, or an RQ1 message requesting it
// @Tags build
// @Accept json
// @Produce json
// @Param request body BuildRequest true "Parameter and value"
// @Success 200 {object} BuildResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/build [post]
func (s *Server) handleBuild(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Profile == "" {
		req.Profile = "gs"
	}
	p, ok := s.registry.Profile(req.Profile)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown profile %q", req.Profile)})
		return
	}
	param, err := s.registry.Find(p, req.Parameter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	device := p.DefaultDevice
	if req.Device != nil {
		if *req.Device < 0 || *req.Device > 0x7F {
			c.JSON(http.StatusBadRequest, gin.H{"error": "device must be 0-127"})
			return
		}
		device = byte(*req.Device)
	}

	var msg []byte
	if req.Request {
		msg, err = sysex.BuildRequest(p, device, param)
	} else {
		var value int
		value, err = sysex.ParseValue(param, req.Value)
		if err == nil {
			msg, err = sysex.Build(p, device, param, value)
		}
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	in := s.registry.Inspect(msg)
	c.JSON(http.StatusOK, BuildResponse{
		Hex:         sysex.FormatHex(msg),
		Description: in.String(),
	})
}

// statusFor maps value errors to 422 and anything else to 400.
func statusFor(err error) int {
	if errors.Is(err, sysex.ErrOutOfRange) || errors.Is(err, sysex.ErrInvalidEnum) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// handleMIDIToSyx godoc
// @Summary Convert MIDI to .syx
// @Description Upload a MIDI file and receive its SysEx messages as a .syx file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/midi2syx [post]
func (s *Server) handleMIDIToSyx(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatSyx)
}

// handleSyxToMIDI godoc
// @Summary Convert .syx to MIDI
// @Description Upload a .syx file and receive a Standard MIDI File
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx file to convert"
// @Param spacing query int false "Ticks between messages"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/syx2midi [post]
func (s *Server) handleSyxToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatSyx, converter.FormatMIDI)
}

func (s *Server) handleConversion(c *gin.Context, fromFormat, toFormat converter.Format) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	opts := s.opts
	if v := c.Query("spacing"); v != "" {
		var spacing uint32
		if _, err := fmt.Sscanf(v, "%d", &spacing); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "spacing must be a number"})
			return
		}
		opts.Spacing = spacing
	}
	conv := converter.New(s.registry, opts)

	result, warnings, err := conv.Convert(data, fromFormat, toFormat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "warnings": warnings})
		return
	}

	outputExt := ".syx"
	contentType := "application/octet-stream"
	if toFormat == converter.FormatMIDI {
		outputExt = ".mid"
		contentType = "audio/midi"
	}

	// Generate output filename
	outputName := header.Filename
	if i := strings.LastIndex(outputName, "."); i > 0 {
		outputName = outputName[:i] + outputExt
	} else {
		outputName = "converted" + outputExt
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Header("X-Warnings", fmt.Sprintf("%d", len(warnings)))
	c.Data(http.StatusOK, contentType, result)
}
