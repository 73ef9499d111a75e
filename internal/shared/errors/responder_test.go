package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSoldOut = errors.New("sold out")

func respondVia(t *testing.T, responder *Responder, err error) (*httptest.ResponseRecorder, *gin.Context, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/cart/checkout", nil)

	responder.RespondError(c, err)

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, c, problem
}

func TestResponder_MapperWins(t *testing.T) {
	responder := NewResponder(func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errSoldOut) {
			return ErrInsufficientStock.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	})

	rec, _, problem := respondVia(t, responder, errSoldOut)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, TypeInsufficientStock, problem.Type)
	assert.Equal(t, "sold out", problem.Detail)
	assert.Equal(t, "/v1/cart/checkout", problem.Instance)
}

func TestResponder_PassesThroughProblems(t *testing.T) {
	rec, _, problem := respondVia(t, NewResponder(), ErrEmptyCart.WithDetail("nothing reserved"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, TypeEmptyCart, problem.Type)
	assert.Equal(t, "nothing reserved", problem.Detail)
}

func TestResponder_HidesUnmappedErrors(t *testing.T) {
	rec, c, problem := respondVia(t, NewResponder(), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, problem.Type)
	assert.Empty(t, problem.Detail)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	require.Len(t, c.Errors, 1)
	assert.True(t, c.IsAborted())
}

func TestNewValidationProblem(t *testing.T) {
	problem := NewValidationProblem(map[string]string{"quantity": "must be positive"})
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, map[string]string{"quantity": "must be positive"}, problem.Extensions["fields"])
	assert.Nil(t, ErrValidation.Extensions)
}
