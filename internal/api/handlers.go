package api

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/cyrup-ai/kodegen-simd/internal/cpu"
	"github.com/cyrup-ai/kodegen-simd/internal/kernels"
	"github.com/cyrup-ai/kodegen-simd/pkg/constrain"
	"github.com/cyrup-ai/kodegen-simd/pkg/logits"
)

func (s *Server) handleCapabilities(c *echo.Context) error {
	f := cpu.Detect()
	return c.JSON(http.StatusOK, CapabilitiesResponse{
		Arch:        f.Arch,
		Level:       f.Best.String(),
		VectorWidth: f.Best.Width(),
		Kernel:      kernels.ActiveName(),
		ForceScalar: f.ForceScalar,
		AVX2:        f.HasAVX2,
		AVX512:      f.HasAVX512,
		NEON:        f.HasNEON,
	})
}

func (s *Server) handleProcess(c *echo.Context) error {
	req, err := decodeJSON[ProcessRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Logits) == 0 {
		return writeBadRequest(c, "logits is required and must not be empty")
	}

	opts := []logits.Option{}
	if req.Temperature != nil {
		opts = append(opts, logits.WithTemperature(*req.Temperature))
	}
	if req.TopK != nil {
		opts = append(opts, logits.WithTopK(*req.TopK))
	}
	if req.TopP != nil {
		opts = append(opts, logits.WithTopP(*req.TopP))
	}
	if req.RepetitionPenalty != nil {
		opts = append(opts, logits.WithRepetitionPenalty(*req.RepetitionPenalty))
	}
	if req.FrequencyPenalty != nil {
		opts = append(opts, logits.WithFrequencyPenalty(*req.FrequencyPenalty))
	}
	if req.PresencePenalty != nil {
		opts = append(opts, logits.WithPresencePenalty(*req.PresencePenalty))
	}

	ctx := logits.NewContext(len(req.Logits), opts...)
	for _, id := range req.History {
		ctx.Observe(id)
	}

	buf := make([]float64, len(req.Logits))
	copy(buf, req.Logits)
	if err := logits.Process(buf, ctx, nil); err != nil {
		return writeProcessError(c, err)
	}
	best, err := logits.Argmax(buf)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}

	s.log.Debug("processed logits", "request", ctx.ID(), "vocab", len(buf))
	return c.JSON(http.StatusOK, ProcessResponse{
		ID:     ctx.ID(),
		Probs:  buf,
		Argmax: best,
		Kernel: kernels.ActiveName(),
	})
}

func (s *Server) handleConstraintCheck(c *echo.Context) error {
	req, err := decodeJSON[ConstraintCheckRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Text == "" {
		return writeBadRequest(c, "text is required")
	}

	var con *constrain.Constraint
	if len(req.Schema) > 0 {
		con, err = constrain.ForSchema(req.Schema, nil)
		if err != nil {
			return writeBadRequest(c, err.Error())
		}
	} else {
		con = constrain.NewSyntax(nil)
	}

	n, advErr := con.AdvanceText(req.Text)
	resp := ConstraintCheckResponse{
		State:  con.State().String(),
		Offset: n,
	}
	switch {
	case advErr != nil:
		resp.Error = advErr.Error()
	case con.State() == constrain.StateAccepted:
		resp.Valid = true
	default:
		if forced, ok := con.ForcedToken(); ok {
			resp.Forced = forced
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// writeProcessError maps pipeline sentinels to request errors; anything else
// is a server fault.
func writeProcessError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, logits.ErrInvalidTemperature),
		errors.Is(err, logits.ErrInvalidTopK),
		errors.Is(err, logits.ErrInvalidTopP),
		errors.Is(err, logits.ErrLengthMismatch),
		errors.Is(err, logits.ErrEmptyInput),
		errors.Is(err, logits.ErrNumericOverflow):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": msg,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
