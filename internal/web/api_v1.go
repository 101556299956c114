package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Getabako/instagram-workflow-template/internal/render"
	"github.com/Getabako/instagram-workflow-template/internal/render/layout"
	"github.com/Getabako/instagram-workflow-template/internal/state"
)

const (
	maxBackgroundBytes = 32 << 20
	defaultQRSize      = 400
	minQRSize          = 64
	maxQRSize          = 2048
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type layoutResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

type statusResponse struct {
	Phase     string     `json:"phase"`
	Total     int        `json:"total"`
	Composed  int        `json:"composed"`
	Uploaded  int        `json:"uploaded"`
	Failed    int        `json:"failed"`
	Current   string     `json:"current,omitempty"`
	Folder    string     `json:"folder,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	Started   *time.Time `json:"started,omitempty"`
	Finished  *time.Time `json:"finished,omitempty"`
}

// APIV1Deps is what the API needs from the rest of the program.
type APIV1Deps struct {
	Compositor *render.Compositor
	Store      *state.Store
}

func apiV1Router(deps APIV1Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		writeAPIError(c, http.StatusNotFound, "not_found", "not found")
	})
	r.NoMethod(func(c *gin.Context) {
		writeAPIError(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.POST("/compose", func(c *gin.Context) { handleCompose(c, deps) })
	r.GET("/layout", handleLayout)
	r.GET("/status", func(c *gin.Context) { handleStatus(c, deps) })
	r.GET("/qr", handleQR)
	return r
}

func handleCompose(c *gin.Context, deps APIV1Deps) {
	if deps.Compositor == nil {
		writeAPIError(c, http.StatusNotImplemented, "not_implemented", "compositor not configured")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackgroundBytes)

	fh, err := c.FormFile("background")
	if err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_request", "background file is required")
		return
	}
	fp, err := fh.Open()
	if err != nil {
		writeAPIError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	defer fp.Close()

	bg, err := render.DecodeBackground(fp)
	if err != nil {
		writeAPIError(c, http.StatusUnprocessableEntity, "load_failed", err.Error())
		return
	}
	data, err := deps.Compositor.Compose(render.Request{
		Background: bg,
		Title:      c.PostForm("title"),
		Content:    c.PostForm("content"),
	})
	if err != nil {
		var loadErr *render.LoadError
		if errors.As(err, &loadErr) {
			writeAPIError(c, http.StatusUnprocessableEntity, "load_failed", err.Error())
			return
		}
		writeAPIError(c, http.StatusInternalServerError, "compose_failed", err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func handleLayout(c *gin.Context) {
	lines := layout.Lines(c.Query("text"))
	if lines == nil {
		lines = []string{}
	}
	c.JSON(http.StatusOK, layoutResponse{Lines: lines, Count: len(lines)})
}

func handleStatus(c *gin.Context, deps APIV1Deps) {
	if deps.Store == nil {
		writeAPIError(c, http.StatusNotImplemented, "not_implemented", "status not configured")
		return
	}
	snap := deps.Store.Snapshot()
	resp := statusResponse{
		Phase:     snap.Phase.String(),
		Total:     snap.Progress.Total,
		Composed:  snap.Progress.Composed,
		Uploaded:  snap.Progress.Uploaded,
		Failed:    snap.Progress.Failed,
		Current:   snap.Progress.Current,
		Folder:    snap.Folder,
		LastError: snap.LastError,
	}
	if !snap.Started.IsZero() {
		resp.Started = &snap.Started
	}
	if !snap.Finished.IsZero() {
		resp.Finished = &snap.Finished
	}
	c.JSON(http.StatusOK, resp)
}

func handleQR(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		writeAPIError(c, http.StatusBadRequest, "missing_text", "text is required")
		return
	}
	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < minQRSize || v > maxQRSize {
			writeAPIError(c, http.StatusBadRequest, "invalid_size", "size must be an integer between 64 and 2048")
			return
		}
		size = v
	}
	data, err := render.QRCodePNG(text, size)
	if err != nil {
		writeAPIError(c, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func writeAPIError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, apiError{Error: code, Message: message})
}
