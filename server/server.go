package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nemostore/analytics"
	"nemostore/storage"
)

// Server exposes the derived-metrics table to the dashboard. Every request
// reads the store fresh; the server itself caches nothing, so it can run
// alongside (or after) a collection without coordination.
type Server struct {
	store *storage.SQLiteStore
}

func New(store *storage.SQLiteStore) *Server {
	return &Server{store: store}
}

func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	api.GET("/listings", s.getListings)
	api.GET("/summary", s.getSummary)
	api.GET("/regions", s.getRegions)

	return router
}

func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) getListings(c *gin.Context) {
	rows, err := analytics.LoadCanonical(s.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows = analytics.Filter(rows, c.Query("region"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"count":    len(rows),
		"listings": rows,
	})
}

func (s *Server) getSummary(c *gin.Context) {
	rows, err := analytics.LoadCanonical(s.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows = analytics.Filter(rows, c.Query("region"), c.Query("category"))
	c.JSON(http.StatusOK, analytics.Summarize(rows))
}

func (s *Server) getRegions(c *gin.Context) {
	counts, err := s.store.CountByRegion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": counts})
}
