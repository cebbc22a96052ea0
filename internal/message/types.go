// Package message defines the request and response types exchanged with a
// browser add-on and the native-messaging framing that carries them.
//
// Every message is an envelope with an explicit type discriminant:
//
//	{"type": "generate", "id": "req-1", "payload": {...}}
//
// Requests are decoded in two steps, envelope first and typed payload second,
// and validated before they reach a handler.
package message

import (
	"encoding/json"
	"time"
)

// Type discriminates message payloads.
type Type string

// Request types.
const (
	TypeGenerate Type = "generate"
	TypeEstimate Type = "estimate"
)

// Response types. TypeEstimate doubles as the estimate response.
const (
	TypeProgress Type = "progress"
	TypeResult   Type = "result"
	TypeError    Type = "error"
)

// Envelope is the wire shape shared by every message.
type Envelope struct {
	Type    Type            `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is a decoded, validated request.
type Request interface {
	RequestType() Type
	RequestID() string
}

// AudioPart is base64 audio carried in a generate request.
type AudioPart struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Data            []byte  `json:"data" validate:"required,min=1"`
	DurationSeconds float64 `json:"durationSeconds" validate:"gte=0"`
}

// Duration returns the part length as a Duration.
func (a AudioPart) Duration() time.Duration {
	return seconds(a.DurationSeconds)
}

// Generate asks for translated subtitles.
type Generate struct {
	ID              string      `json:"-"`
	Transcript      string      `json:"transcript" validate:"required_without=Audio"`
	Audio           []AudioPart `json:"audio" validate:"required_without=Transcript,max=64,dive"`
	DurationSeconds float64     `json:"durationSeconds" validate:"gte=0"`
	TargetLang      string      `json:"targetLang" validate:"required,bcp47_language_tag"`
	Title           string      `json:"title" validate:"max=500"`
	Channel         string      `json:"channel" validate:"max=200"`
	Provider        string      `json:"provider" validate:"omitempty,oneof=openai deepseek"`
	Model           string      `json:"model" validate:"max=100"`
	MaxBudget       int         `json:"maxBudget" validate:"gte=0"`
}

// RequestType implements Request.
func (g *Generate) RequestType() Type { return TypeGenerate }

// RequestID implements Request.
func (g *Generate) RequestID() string { return g.ID }

// Duration returns the known video length.
func (g *Generate) Duration() time.Duration {
	return seconds(g.DurationSeconds)
}

// Estimate asks for a size estimate and chunk plan without translating.
type Estimate struct {
	ID         string `json:"-"`
	Transcript string `json:"transcript" validate:"required"`
	MaxBudget  int    `json:"maxBudget" validate:"gte=0"`
}

// RequestType implements Request.
func (e *Estimate) RequestType() Type { return TypeEstimate }

// RequestID implements Request.
func (e *Estimate) RequestID() string { return e.ID }

// Progress reports the chunk being translated.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Stats mirrors the counters of a translation run.
type Stats struct {
	RunID             string `json:"runId"`
	TotalChunks       int    `json:"totalChunks"`
	Successful        int    `json:"successful"`
	Failed            int    `json:"failed"`
	Retried           int    `json:"retried"`
	Rechunked         int    `json:"rechunked"`
	UsedAudioFallback bool   `json:"usedAudioFallback"`
}

// Result carries the finished subtitles.
type Result struct {
	SRT   string `json:"srt"`
	Stats Stats  `json:"stats"`
}

// EstimateResult answers an Estimate request.
type EstimateResult struct {
	IsLongVideo          bool   `json:"isLongVideo"`
	EstimatedMinutes     int    `json:"estimatedMinutes"`
	RecommendedChunkSize int    `json:"recommendedChunkSize"`
	WarningMessage       string `json:"warningMessage,omitempty"`
	Chunks               int    `json:"chunks"`
}

// Error codes sent in error responses.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeInputUnavailable = "input_unavailable"
	CodeAuthFailed       = "auth_failed"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeCanceled         = "canceled"
	CodeInternal         = "internal"
)

// Error reports a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is an outbound message.
type Response struct {
	Type    Type   `json:"type"`
	ID      string `json:"id"`
	Payload any    `json:"payload"`
}

// NewProgress builds a progress response.
func NewProgress(id string, current, total int) Response {
	return Response{Type: TypeProgress, ID: id, Payload: Progress{Current: current, Total: total}}
}

// NewResult builds a result response.
func NewResult(id string, r Result) Response {
	return Response{Type: TypeResult, ID: id, Payload: r}
}

// NewEstimate builds an estimate response.
func NewEstimate(id string, e EstimateResult) Response {
	return Response{Type: TypeEstimate, ID: id, Payload: e}
}

// NewError builds an error response.
func NewError(id, code, msg string) Response {
	return Response{Type: TypeError, ID: id, Payload: Error{Code: code, Message: msg}}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
