package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/userdeck/userdeck/pkg/errors"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/", handler)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": 7})
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorEnvelopeUsesAppErrorStatus(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Error(c, appErrors.ErrForbidden)
	})

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestErrorEnvelopeHidesGenericErrors(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Error(c, errors.New("sensitive detail"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, appErrors.ErrInternalServer.Message, body.Error.Message)
	require.NotContains(t, rec.Body.String(), "sensitive detail")
}
