package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/katalvlaran/lattix/config"
	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/pricing"
	"github.com/katalvlaran/lattix/telemetry"
)

var errPeriodsLimit = errors.New("server: periods above limit")

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// modelInfo describes one registered model.
type modelInfo struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Headline        string             `json:"headline"`
	Defaults        map[string]float64 `json:"defaults"`
	Attributes      []string           `json:"attributes"`
	ChainAttributes []string           `json:"chain_attributes,omitempty"`
}

// priceRequest is the body of POST /v1/models/:name/price.
type priceRequest struct {
	Params map[string]float64 `json:"params"`
	Render struct {
		Attribute string `json:"attribute"`
		Layout    string `json:"layout"`
	} `json:"render"`
	Chain  []string `json:"chain"`
	Places *int32   `json:"places"`
}

// sweepRequest is the body of POST /v1/models/:name/sweep.
type sweepRequest struct {
	Params map[string]float64 `json:"params"`
	Param  string             `json:"param" binding:"required"`
	Values []float64          `json:"values"`
	From   float64            `json:"from"`
	To     float64            `json:"to"`
	Step   float64            `json:"step"`
	Places *int32             `json:"places"`
}

// listModels handles GET /v1/models.
func (s *Server) listModels(c *gin.Context) {
	names := s.cfg.Registry.Names()
	out := make([]modelInfo, 0, len(names))
	for _, name := range names {
		m, err := s.cfg.Registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, modelInfo{
			Name:            m.Name(),
			Description:     m.Description(),
			Headline:        m.Headline(),
			Defaults:        m.Defaults(),
			Attributes:      m.Attributes(),
			ChainAttributes: m.ChainAttributes(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	c.JSON(http.StatusOK, gin.H{"models": out})
}

// price handles POST /v1/models/:name/price.
func (s *Server) price(c *gin.Context) {
	m, ok := s.model(c)
	if !ok {
		return
	}

	// An empty body prices the defaults.
	var req priceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, http.StatusBadRequest, "INVALID_REQUEST", err)
			return
		}
	}
	layout, err := lattice.ParseLayout(req.Render.Layout)
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, "INVALID_LAYOUT", err)
		return
	}
	if err = s.checkPeriods(m, req.Params, nil); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, "PERIODS_LIMIT", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Timeout)
	defer cancel()

	res, err := pricing.Price(ctx, m, req.Params, pricing.Request{
		Render: req.Render.Attribute,
		Layout: layout,
		Chain:  req.Chain,
	}, s.options(c, m, req.Places)...)
	if err != nil {
		s.failPricing(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// sweep handles POST /v1/models/:name/sweep.
func (s *Server) sweep(c *gin.Context) {
	m, ok := s.model(c)
	if !ok {
		return
	}

	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	sc := config.SweepConfig{Param: req.Param, Values: req.Values, From: req.From, To: req.To, Step: req.Step}
	values, err := sc.Points()
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, "INVALID_SWEEP", err)
		return
	}
	var swept []float64
	if req.Param == "periods" {
		swept = values
	}
	if err = s.checkPeriods(m, req.Params, swept); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, "PERIODS_LIMIT", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Timeout)
	defer cancel()

	res, err := pricing.Sweep(ctx, m, req.Params, req.Param, values, s.options(c, m, req.Places)...)
	if err != nil {
		s.failPricing(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// model resolves the :name path parameter, writing a 404 when unknown.
func (s *Server) model(c *gin.Context) (pricing.Model, bool) {
	m, err := s.cfg.Registry.Get(c.Param("name"))
	if err != nil {
		s.fail(c, http.StatusNotFound, "UNKNOWN_MODEL", err)
		return nil, false
	}

	return m, true
}

func (s *Server) options(c *gin.Context, m pricing.Model, places *int32) []pricing.Option {
	opts := []pricing.Option{
		pricing.WithLogger(telemetry.WithModel(telemetry.FromContext(c.Request.Context()), m.Name())),
		pricing.WithOnUpdate(s.metrics.ObserveLattice),
	}
	if places != nil {
		opts = append(opts, pricing.WithPlaces(*places))
	}

	return opts
}

// checkPeriods rejects lattices larger than MaxPeriods before any are built.
func (s *Server) checkPeriods(m pricing.Model, overrides map[string]float64, swept []float64) error {
	periods, ok := overrides["periods"]
	if !ok {
		periods = m.Defaults()["periods"]
	}
	limit := float64(s.cfg.MaxPeriods)
	if periods > limit {
		return fmt.Errorf("%w: %g > %d", errPeriodsLimit, periods, s.cfg.MaxPeriods)
	}
	for _, p := range swept {
		if p > limit {
			return fmt.Errorf("%w: %g > %d", errPeriodsLimit, p, s.cfg.MaxPeriods)
		}
	}

	return nil
}

// failPricing maps pricing and lattice errors to HTTP statuses.
func (s *Server) failPricing(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.fail(c, http.StatusGatewayTimeout, "TIMEOUT", err)
	case errors.Is(err, context.Canceled):
		s.fail(c, 499, "CANCELED", err)
	case errors.Is(err, pricing.ErrBadPlaces):
		s.fail(c, http.StatusUnprocessableEntity, "INVALID_PLACES", err)
	case errors.Is(err, pricing.ErrUnknownParam),
		errors.Is(err, pricing.ErrNoValues),
		errors.Is(err, lattice.ErrRecalc),
		errors.Is(err, lattice.ErrBadPeriods),
		errors.Is(err, lattice.ErrUnknownAttr),
		errors.Is(err, lattice.ErrNonFinite):
		s.fail(c, http.StatusUnprocessableEntity, "INVALID_PARAMETERS", err)
	default:
		s.fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}

func (s *Server) fail(c *gin.Context, status int, code string, err error) {
	logger := telemetry.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("server: request failed", "code", code, "error", err)
	} else {
		logger.Debug("server: request rejected", "code", code, "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: errorDetail{Code: code, Message: err.Error()}})
}
