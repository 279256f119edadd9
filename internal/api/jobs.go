package api

import (
	"log/slog"
	"net/http"
	"redis-spread-queue/internal/spread"
	"redis-spread-queue/internal/store"
	"time"

	"github.com/gin-gonic/gin"
)

type handlerView struct {
	Name      string           `json:"name"`
	Signature spread.Signature `json:"signature"`
	Duration  int64            `json:"spread_duration"`
	Method    spread.Method    `json:"spread_method"`
}

func (s *server) listHandlers(c *gin.Context) {
	names := s.Handlers.Names()
	out := make([]handlerView, 0, len(names))
	for _, name := range names {
		h, err := s.Handlers.Get(name)
		if err != nil {
			continue
		}
		v := handlerView{
			Name:      h.Name,
			Signature: h.Signature,
			Duration:  int64(spread.DefaultDuration / time.Second),
			Method:    spread.MethodRandom,
		}
		if h.Duration != 0 || h.HasDuration {
			v.Duration = int64(h.Duration / time.Second)
		}
		if h.Method != "" {
			v.Method = h.Method
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}

// enqueue is the plain path: run now, or at scheduled_at if it is in the
// future.
func (s *server) enqueue(c *gin.Context) {
	var req struct {
		Type        string `json:"type" binding:"required"`
		Args        []any  `json:"args"`
		ScheduledAt int64  `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := s.Handlers.Get(req.Type); err != nil {
		s.fail(c, err)
		return
	}

	at := s.Now()
	id, err := s.Queue.TargetAt(req.Type, at).EnqueueAt(c.Request.Context(), req.ScheduledAt, req.Args)
	if err != nil {
		s.fail(c, err)
		return
	}

	now := at.Unix()
	status := store.StatusQueued
	fields := map[string]interface{}{"created_at": now}
	if req.ScheduledAt > now {
		status = store.StatusScheduled
		fields["scheduled_at"] = req.ScheduledAt
	}
	s.setStatus(c, id, status, fields)

	c.JSON(http.StatusAccepted, gin.H{"id": id, "status": status})
}

// spreadJob plans the call against the registered handler and hands it to the
// matching queue operation.
func (s *server) spreadJob(c *gin.Context) {
	var req struct {
		Args []any `json:"args"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h, err := s.Handlers.Get(c.Param("type"))
	if err != nil {
		s.fail(c, err)
		return
	}
	call, err := s.Spreader.Plan(h, req.Args...)
	if err != nil {
		s.fail(c, err)
		return
	}

	// routing and the reported status read the same clock
	at := s.Now()
	id, err := s.Spreader.Dispatch(c.Request.Context(), s.Queue.TargetAt(h.Name, at), call)
	if err != nil {
		s.fail(c, err)
		return
	}

	now := at.Unix()
	status := store.StatusScheduled
	fields := map[string]interface{}{
		"created_at":    now,
		"spread_mode":   string(call.Mode),
		"spread_offset": call.Offset,
	}
	resp := gin.H{"id": id, "mode": call.Mode, "offset": call.Offset}
	switch call.Mode {
	case spread.ModeNow:
		status = store.StatusQueued
	case spread.ModeDelayed:
		fields["scheduled_at"] = now + call.Delay
		resp["delay"] = call.Delay
	case spread.ModeAt:
		if call.At <= now {
			status = store.StatusQueued
		}
		fields["scheduled_at"] = call.At
		resp["at"] = call.At
	}
	resp["status"] = status
	s.setStatus(c, id, status, fields)

	c.JSON(http.StatusAccepted, resp)
}

// setStatus is best effort: the job is already enqueued. It never replaces a
// status the scheduler wrote in the meantime.
func (s *server) setStatus(c *gin.Context, id, status string, fields map[string]interface{}) {
	if err := s.Store.CreateStatus(c.Request.Context(), id, status, fields); err != nil {
		s.Logger.WarnContext(c.Request.Context(), "set status failed",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
	}
}

func (s *server) getJob(c *gin.Context) {
	data, err := s.Store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, data)
}
