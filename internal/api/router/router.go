package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/config"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/api/handler"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/api/middleware"
)

// Setup builds the gin engine with every route of the local API.
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		lectures := v1.Group("/lectures")
		{
			lectures.GET("", h.Lecture.ListLectures)
			lectures.POST("", h.Lecture.CreateLecture)
			lectures.GET("/:id", h.Lecture.GetLecture)
			lectures.PUT("/:id", h.Lecture.UpdateLecture)
			lectures.DELETE("/:id", h.Lecture.DeleteLecture)
			lectures.GET("/:id/overview", h.Lecture.GetLectureOverview)
			lectures.GET("/:id/calendar", h.Export.ExportCalendar)
		}

		active := v1.Group("/active-lecture")
		{
			active.GET("", h.ActiveLecture.GetActiveLecture)
			active.PUT("", h.ActiveLecture.SetActiveLecture)
			active.DELETE("", h.ActiveLecture.ClearActiveLecture)
			active.GET("/overview", h.ActiveLecture.GetOverview)
			active.GET("/last-sheet-nr", h.ActiveLecture.GetLastSheetNr)
			active.GET("/presentation-points", h.ActiveLecture.GetPresentationPoints)
			active.GET("/systems/:systemId/points", h.ActiveLecture.GetSystemPoints)
			active.POST("/sheets", h.ActiveLecture.AddSheet)
			active.PUT("/sheets/:sheetId", h.ActiveLecture.UpdateSheet)
			active.DELETE("/sheets/:sheetId", h.ActiveLecture.DeleteSheet)
		}

		semester := v1.Group("/semester")
		{
			semester.GET("", h.Semester.GetSemester)
			semester.PUT("", h.Semester.ReplaceSemester)
			semester.POST("/new", h.Semester.NewSemester)
			semester.POST("/save", h.Semester.SaveSemester)
			semester.POST("/load", h.Semester.LoadSemester)
		}

		export := v1.Group("/export")
		{
			export.GET("/overview", h.Export.ExportOverview)
		}
	}

	return r
}
