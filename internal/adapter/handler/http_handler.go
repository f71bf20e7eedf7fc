package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/campus-canteen/internal/core/service"
)

// CommandDispatcher is what the transports need from the core.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, req service.Request) string
}

type HTTPHandler struct {
	dispatcher CommandDispatcher
}

func NewHTTPHandler(dispatcher CommandDispatcher) *HTTPHandler {
	return &HTTPHandler{dispatcher: dispatcher}
}

// Command maps /<command>?k=v to a dispatcher call. POST form fields override query
// values. Domain failures are still answered with 200; the body carries the
// "Error: " prefix.
func (h *HTTPHandler) Command(c *gin.Context) {
	req := service.ParseRequest(c.Request.URL.RequestURI())
	req.Command = c.Param("command")

	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil {
			for key, values := range c.Request.PostForm {
				if len(values) > 0 && values[0] != "" {
					req.Params[key] = values[0]
				}
			}
		}
	}

	result := h.dispatcher.Dispatch(c.Request.Context(), req)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result))
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Register mounts the routes on router.
func (h *HTTPHandler) Register(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)
	router.GET("/:command", h.Command)
	router.POST("/:command", h.Command)
}
