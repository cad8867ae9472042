package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) Params {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/audit"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := paramsFor("?page=3&limit=10")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)

	p = paramsFor("")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = paramsFor("?page=-1&limit=9999")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 20, Offset: 20}, 45)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, int64(45), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	meta = NewMeta(Params{Page: 1, Limit: 20}, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
