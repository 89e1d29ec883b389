package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

// The visit recorder reads ClientMetadata from a goroutine after the
// handler returns, while fasthttp reuses the request buffer for the next
// request on the connection. The snapshot must survive that reuse.
func TestClientMetadata_SurvivesRequestBufferReuse(t *testing.T) {
	app := fiber.New()
	h := NewBaseHandler()

	fctx := &fasthttp.RequestCtx{}
	fctx.Request.Header.Set(fiber.HeaderUserAgent, "first-agent/1.0")
	fctx.Request.Header.Set(fiber.HeaderReferer, "https://first.example.com/")

	c := app.AcquireCtx(fctx)
	metadata := h.clientMetadata(c)
	app.ReleaseCtx(c)

	// Overwrite the header storage in place, as a keep-alive connection
	// does when the next request arrives
	fctx.Request.Header.Set(fiber.HeaderUserAgent, "other-agent/9.9")
	fctx.Request.Header.Set(fiber.HeaderReferer, "https://other.example.com")

	assert.Equal(t, "first-agent/1.0", metadata.UserAgent)
	assert.Equal(t, "https://first.example.com/", metadata.Referer)
}
