package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/gymbmi/internal/analysis"
	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/charts"
	"github.com/KaramelBytes/gymbmi/internal/record"
	"github.com/KaramelBytes/gymbmi/internal/session"
)

// CalcRequest is one quick calculator entry.
type CalcRequest struct {
	Name     string   `json:"name"`
	Sex      string   `json:"sex"`
	Race     string   `json:"race_or_ethnicity"`
	Age      *int     `json:"age"`
	HeightM  *float64 `json:"height_m" binding:"required"`
	WeightKg *float64 `json:"weight_kg" binding:"required"`
}

func (r CalcRequest) input() record.Input {
	return record.Input{
		Name:     r.Name,
		Sex:      record.ParseSex(r.Sex),
		Race:     record.ParseRace(r.Race),
		Age:      r.Age,
		HeightM:  bmi.Known(*r.HeightM),
		WeightKg: bmi.Known(*r.WeightKg),
	}
}

// GenerateRequest asks for synthetic data. Zero fields take the server defaults.
type GenerateRequest struct {
	Count  *int   `json:"count"`
	Seed   *int64 `json:"seed"`
	Random bool   `json:"random"`
}

// BatchResponse describes the batch after a load.
type BatchResponse struct {
	Source  string           `json:"source"`
	Name    string           `json:"name"`
	Rows    int              `json:"rows"`
	Columns []string         `json:"columns"`
	Summary analysis.Summary `json:"summary"`
}

func batchResponse(sel session.Selection) BatchResponse {
	out := BatchResponse{Source: sel.Kind.String()}
	if sel.Table != nil {
		out.Name = sel.Table.Name
		out.Rows = sel.Table.Len()
		out.Columns = sel.Table.Columns
		out.Summary = analysis.Summarize(sel.Table.Rows)
	} else {
		out.Summary = analysis.Summarize(nil)
	}
	return out
}

// computeBMI derives one entry without touching the history.
func (s *Server) computeBMI(c *gin.Context) {
	var req CalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	in := req.input()
	if err := session.ValidateInput(in); err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, record.New(in))
}

func (s *Server) addHistory(c *gin.Context) {
	var req CalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	p, err := s.sess.Calculate(req.input())
	s.mu.Unlock()
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) listHistory(c *gin.Context) {
	s.mu.Lock()
	rows := s.sess.History().Rows()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(rows),
		"rows":    rows,
		"summary": analysis.Summarize(rows),
	})
}

func (s *Server) historyCSV(c *gin.Context) {
	s.mu.Lock()
	tbl := s.sess.History().Table()
	s.mu.Unlock()
	s.writeCSV(c, tbl, "history.csv")
}

func (s *Server) batchCSV(c *gin.Context) {
	s.mu.Lock()
	tbl := s.sess.Batch()
	s.mu.Unlock()
	if tbl == nil {
		abort(c, http.StatusNotFound, errors.New("no batch loaded"))
		return
	}
	s.writeCSV(c, tbl, "batch.csv")
}

func (s *Server) writeCSV(c *gin.Context, tbl *record.Table, name string) {
	data, err := tbl.CSV()
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) generateBatch(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}
	opt := s.cfg.Demo
	if req.Count != nil {
		opt.Count = *req.Count
	}
	if req.Seed != nil {
		opt.Seed = req.Seed
	}
	if req.Random {
		opt.Seed = nil
	}

	s.mu.Lock()
	sel, err := s.sess.Interact(session.Interaction{Generate: &opt})
	s.mu.Unlock()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse(sel))
}

func (s *Server) uploadBatch(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	s.mu.Lock()
	sel, err := s.sess.Interact(session.Interaction{UploadName: fh.Filename, Upload: f})
	s.mu.Unlock()
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(statusFor(err), gin.H{
			"error":  err.Error(),
			"source": sel.Kind.String(),
		})
		return
	}
	c.JSON(http.StatusOK, batchResponse(sel))
}

// DashboardQuery carries the dashboard controls. Absent keys keep the server defaults.
type DashboardQuery struct {
	AgeMin   int    `form:"age_min"`
	AgeMax   int    `form:"age_max"`
	Sex      string `form:"sex"`
	Category string `form:"category"`
	Race     string `form:"race"`
	Bins     int    `form:"bins"`
	Format   string `form:"format"`
}

func (s *Server) buildDashboard(c *gin.Context) (*analysis.Dashboard, DashboardQuery, bool) {
	q := DashboardQuery{
		AgeMin:   s.cfg.Filter.AgeMin,
		AgeMax:   s.cfg.Filter.AgeMax,
		Sex:      s.cfg.Filter.Sex,
		Category: s.cfg.Filter.Category,
		Race:     s.cfg.Filter.Race,
		Bins:     s.cfg.Bins,
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil, q, false
	}
	f := analysis.Filter{AgeMin: q.AgeMin, AgeMax: q.AgeMax, Sex: q.Sex, Category: q.Category, Race: q.Race}

	s.mu.Lock()
	sel := s.sess.Active()
	s.mu.Unlock()

	var rows []record.Person
	if sel.Table != nil {
		rows = sel.Table.Rows
	}
	d, err := analysis.Build(rows, f, analysis.Options{Bins: q.Bins})
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil, q, false
	}
	d.Source = sel.Kind.String()
	return d, q, true
}

func (s *Server) dashboard(c *gin.Context) {
	d, q, ok := s.buildDashboard(c)
	if !ok {
		return
	}
	if q.Format == "md" || q.Format == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(d.Markdown()))
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) chart(c *gin.Context) {
	kind, err := charts.ParseKind(c.Param("kind"))
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	d, _, ok := s.buildDashboard(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(d, kind, &buf, s.cfg.Charts); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			abort(c, http.StatusNotFound, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
