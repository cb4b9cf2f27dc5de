package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

// ErrInvalidRequest marks caption request validation failures so handlers
// can map them to a 400.
var ErrInvalidRequest = errors.New("invalid caption request")

type captionRequestError struct {
	msg string
}

func (e captionRequestError) Error() string { return e.msg }
func (e captionRequestError) Unwrap() error { return ErrInvalidRequest }

func badCaptionRequest(msg string) error {
	return captionRequestError{msg: msg}
}

// decodeCaptionRequest reads a caption request from c. A JSON body carries
// the base64 image plus inline parameters; any other content type is taken
// as the raw image bytes. Query parameters apply to both forms and win
// over body fields.
func decodeCaptionRequest(c *echo.Context) (CaptionRequest, error) {
	var req CaptionRequest
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		var err error
		req, err = decodeJSON[CaptionRequest](c.Request().Body)
		if err != nil {
			return req, badCaptionRequest(err.Error())
		}
	} else {
		image, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return req, badCaptionRequest("read image body: " + err.Error())
		}
		req.Image = image
	}
	if err := applyQueryParams(c, &req); err != nil {
		return req, err
	}
	return req, nil
}

func applyQueryParams(c *echo.Context, req *CaptionRequest) error {
	if v := c.QueryParam("beam_width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badCaptionRequest("beam_width must be an integer")
		}
		req.BeamWidth = &n
	}
	if v := c.QueryParam("max_steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badCaptionRequest("max_steps must be an integer")
		}
		req.MaxSteps = &n
	}
	if v := c.QueryParam("length_normalization"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badCaptionRequest("length_normalization must be a number")
		}
		req.LengthNormalization = &f
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badCaptionRequest("limit must be an integer")
		}
		req.Limit = &n
	}
	return nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func newCaptionID() string {
	return "cap_" + uuid.NewString()
}
