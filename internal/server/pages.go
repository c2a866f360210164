package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/api"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/importer"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/util"
)

var chartColors = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#06b6d4", "#6366f1"}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency": util.FormatCurrency,
		"percent":  util.FormatPercent,
		"color": func(i int) string {
			return chartColors[i%len(chartColors)]
		},
		// barWidth scales v against the largest point, in percent
		"barWidth": func(v float64, points []model.ChartPoint) float64 {
			var peak float64
			for _, p := range points {
				peak = max(peak, p.Value)
			}
			if peak <= 0 {
				return 0
			}
			return calculator.Round1(v / peak * 100)
		},
		"sortURL":    sortURL,
		"exportURL":  exportURL,
		"pathEscape": url.PathEscape,
		"sortMark": func(v *api.DashboardView, field string) string {
			if string(v.Sort.Field) != field {
				return ""
			}
			if v.Sort.Order == calculator.Desc {
				return "▼"
			}
			return "▲"
		},
	}
}

func filterValues(v *api.DashboardView) url.Values {
	q := url.Values{}
	q.Set("showroom", v.Filters.Showroom)
	q.Set("billMonth", v.Filters.BillMonth)
	q.Set("counter", v.Filters.Counter)
	return q
}

// sortURL toggles the order when field is already active, else sorts ascending.
func sortURL(v *api.DashboardView, field string) string {
	order := calculator.Asc
	if string(v.Sort.Field) == field && v.Sort.Order == calculator.Asc {
		order = calculator.Desc
	}
	q := filterValues(v)
	q.Set("sort", field)
	q.Set("order", string(order))
	return "/?" + q.Encode()
}

func exportURL(v *api.DashboardView) string {
	q := filterValues(v)
	q.Set("sort", string(v.Sort.Field))
	q.Set("order", string(v.Sort.Order))
	return "/api/export?" + q.Encode()
}

func backTo(c *gin.Context, msg string) {
	target := "/"
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Path == "/" {
		q := ref.Query()
		q.Del("msg")
		if msg != "" {
			q.Set("msg", msg)
		}
		target = "/?" + q.Encode()
	} else if msg != "" {
		target = "/?" + url.Values{"msg": {msg}}.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) dashboardPage(c *gin.Context) {
	var q api.DashboardQuery
	_ = c.ShouldBindQuery(&q)

	view, err := s.api.Dashboard(c.Request.Context(), q, api.IsAdmin(c))
	if err != nil {
		s.logger.Error("render dashboard", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load data")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"View":    view,
		"Message": c.Query("msg"),
		"Mask":    api.Mask,
		"All": gin.H{
			"Showrooms": model.AllShowrooms,
			"Months":    model.AllMonths,
			"Counters":  model.AllCounters,
		},
	})
}

func (s *Server) loginPage(c *gin.Context) {
	if api.IsAdmin(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Error": "", "Username": ""})
}

func (s *Server) loginSubmit(c *gin.Context) {
	var req api.LoginRequest
	_ = c.ShouldBind(&req)

	_, err := s.api.SignIn(c, req.Username, req.Password)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, auth.ErrRateLimited):
		c.HTML(http.StatusTooManyRequests, "login.html", gin.H{"Error": "Too many attempts. Try again in a minute.", "Username": req.Username})
	default:
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid credentials", "Username": req.Username})
	}
}

func (s *Server) logoutSubmit(c *gin.Context) {
	s.api.SignOut(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) uploadSubmit(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		backTo(c, "Choose a file to upload")
		return
	}

	path, err := s.api.SpoolUpload(c, fh)
	if err != nil {
		s.logger.Warn("save upload", zap.Error(err))
		backTo(c, "Failed to save upload: "+err.Error())
		return
	}
	defer os.Remove(path)

	preserve := c.DefaultPostForm("preserveStatuses", "true") == "true"
	last := s.api.RunImport(c.Request.Context(), path, filepath.Base(fh.Filename), preserve, nil)
	if last.Type != importer.EventDone {
		backTo(c, "Upload failed: "+last.Message)
		return
	}
	report, _ := last.Data.(*importer.Report)
	msg := last.Message
	if report != nil {
		msg = fmt.Sprintf("%s: %d rows, %d staff", last.Message, report.ImportedRows, report.StaffCount)
	}
	backTo(c, msg)
}

func (s *Server) statusSubmit(c *gin.Context) {
	if !s.api.CanEditStatus(c) {
		c.String(http.StatusForbidden, "Admin access required")
		return
	}
	id := c.Param("id")
	status := c.PostForm("status")

	_, err := s.api.SetTrainingStatus(c.Request.Context(), id, status)
	switch {
	case err == nil:
		backTo(c, "")
	case errors.Is(err, calculator.ErrUnknownStatus), errors.Is(err, api.ErrStaffNotFound):
		backTo(c, err.Error())
	default:
		s.logger.Error("update training status", zap.Error(err))
		backTo(c, "Failed to update status")
	}
}
