package restexecutor

import (
	"net/http"
	"slices"

	"github.com/algoflow/judge/catalog"
	"github.com/gin-gonic/gin"
)

// Catalog lists the problems served by the problem handle
type Catalog interface {
	Algorithms() []string
	List(algorithm string) []*catalog.Problem
	Get(algorithm, id string) (*catalog.Problem, bool)
}

type problemHandle struct {
	catalog Catalog
}

// NewProblemHandle creates a new problem handle
func NewProblemHandle(c Catalog) Register {
	return &problemHandle{catalog: c}
}

func (p *problemHandle) Register(r *gin.Engine) {
	r.GET("/algorithms", p.handleAlgorithms)
	r.GET("/problems/:algorithm", p.handleList)
	r.GET("/problems/:algorithm/:id", p.handleGet)
}

type problemSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type problemDetail struct {
	*catalog.Problem
	Text string `json:"text"`
}

func (p *problemHandle) handleAlgorithms(c *gin.Context) {
	c.JSON(http.StatusOK, p.catalog.Algorithms())
}

func (p *problemHandle) handleList(c *gin.Context) {
	algorithm := c.Param("algorithm")
	if !slices.Contains(p.catalog.Algorithms(), algorithm) {
		c.AbortWithStatusJSON(http.StatusNotFound, "algorithm not found")
		return
	}
	ps := p.catalog.List(algorithm)
	rt := make([]problemSummary, 0, len(ps))
	for _, pb := range ps {
		rt = append(rt, problemSummary{ID: pb.ID, Title: pb.Title})
	}
	c.JSON(http.StatusOK, rt)
}

func (p *problemHandle) handleGet(c *gin.Context) {
	pb, ok := p.catalog.Get(c.Param("algorithm"), c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, catalog.ErrNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, problemDetail{Problem: pb, Text: catalog.Format(pb)})
}
