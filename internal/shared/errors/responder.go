package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of every error response.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns an application error into a problem when it recognizes it.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem responses, consulting its mappers in order.
type Responder struct {
	mappers []ErrorMapper
}

// NewResponder builds a responder with the given mappers.
func NewResponder(mappers ...ErrorMapper) *Responder {
	return &Responder{mappers: mappers}
}

// Respond writes problem with the problem+json content type and aborts the chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and writes it. Unmapped errors become a 500 without
// their text, which may carry storage or broker internals.
func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	_ = c.Error(err)
	r.Respond(c, ErrInternal)
}

var plain = NewResponder()

// Respond writes problem without any error mapping.
func Respond(c *gin.Context, problem ProblemDetail) {
	plain.Respond(c, problem)
}
