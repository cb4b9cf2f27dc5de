package api

// CaptionRequest is the body of POST /v1/captions. Image carries the raw
// encoded image, base64 in JSON. Pointer fields distinguish "not set" from
// zero.
type CaptionRequest struct {
	Image               []byte   `json:"image"`
	BeamWidth           *int     `json:"beam_width,omitempty"`
	MaxSteps            *int     `json:"max_steps,omitempty"`
	LengthNormalization *float64 `json:"length_normalization,omitempty"`
	Limit               *int     `json:"limit,omitempty"`
}

type CaptionResult struct {
	Sentence   string  `json:"sentence"`
	Logprob    float64 `json:"logprob"`
	Confidence float64 `json:"confidence"`
}

type CaptionResponse struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Captions  []CaptionResult `json:"captions"`
}

type DeleteCaptionResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
