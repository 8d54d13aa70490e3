package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/pricefeed/internal/domain/repository"
	"github.com/yourusername/pricefeed/internal/usecase"
)

const (
	archiveName     = "site_files.zip"
	defaultRunLimit = 20
)

// SiteArchive output papkasini zip qilib beradi
type SiteArchive interface {
	WriteZip(w io.Writer) error
}

// Options server bog'liqliklari
type Options struct {
	Catalog     usecase.CatalogUseCase
	Feed        usecase.FeedUseCase
	OutputDir   string
	DownloadKey string
	Archive     SiteArchive
}

// Server katalog API va statik fayllar
type Server struct {
	opts   Options
	engine *gin.Engine
}

// NewServer router va handlerlarni ro'yxatdan o'tkazish
func NewServer(opts Options) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	s := &Server{opts: opts, engine: r}

	r.GET("/health", s.health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/catalog", s.getCatalog)
		apiGroup.GET("/catalog/summary", s.getSummary)
		apiGroup.GET("/catalog/search", s.search)
		apiGroup.GET("/categories/:id/offers", s.getCategoryOffers)
		apiGroup.GET("/offers/:id", s.getOffer)
		apiGroup.GET("/runs", s.listRuns)
		apiGroup.POST("/generate", s.generate)
		apiGroup.GET("/download-site-files", s.downloadSiteFiles)
	}

	r.GET("/product/:id", s.productPage)
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.OutputDir))))

	return s
}

// Handler http.Handler sifatida
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serverni ishga tushirish, ctx bekor qilinganda to'xtatish
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// health oxirgi generatsiya holati bilan
func (s *Server) health(c *gin.Context) {
	resp := gin.H{"status": "ok", "lastRun": nil}
	run, err := s.opts.Feed.LastRun(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ Failed to read last run: %v", err)
	} else if run != nil {
		resp["lastRun"] = run
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getCatalog(c *gin.Context) {
	catalog, err := s.opts.Catalog.GetCatalog(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": catalog.Categories,
		"offers":     catalog.Offers,
	})
}

func (s *Server) getSummary(c *gin.Context) {
	summary, err := s.opts.Catalog.Summary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	offers, err := s.opts.Catalog.Search(c.Request.Context(), query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "offers": nonNil(offers)})
}

func (s *Server) getCategoryOffers(c *gin.Context) {
	offers, err := s.opts.Catalog.GetByCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categoryId": c.Param("id"), "offers": nonNil(offers)})
}

func (s *Server) getOffer(c *gin.Context) {
	offer, err := s.opts.Catalog.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (s *Server) listRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.opts.Feed.History(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// generate qo'lda generatsiya (download kaliti bilan himoyalangan)
func (s *Server) generate(c *gin.Context) {
	if !s.authorized(c) {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	// Klient uzilsa ham generatsiya oxirigacha bajariladi
	run, err := s.opts.Feed.Generate(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, usecase.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) downloadSiteFiles(c *gin.Context) {
	if !s.authorized(c) {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	if info, err := os.Stat(s.opts.OutputDir); err != nil || !info.IsDir() {
		c.String(http.StatusNotFound, "Directory not found.")
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	c.Status(http.StatusOK)
	if err := s.opts.Archive.WriteZip(c.Writer); err != nil {
		// Sarlavha yuborilgan, faqat loglaymiz
		log.Printf("❌ Failed to stream site archive: %v", err)
	}
}

// productPage /product/{id} -> product/{id}.html
func (s *Server) productPage(c *gin.Context) {
	id := c.Param("id")
	id = strings.TrimSuffix(id, ".html")
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	page := filepath.Join(s.opts.OutputDir, "product", id+".html")
	if _, err := os.Stat(page); err != nil {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	c.File(page)
}

func (s *Server) authorized(c *gin.Context) bool {
	key := c.Query("key")
	if s.opts.DownloadKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.DownloadKey)) == 1
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrCatalogNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Каталог инициализируется. Пожалуйста, попробуйте через минуту."})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Printf("❌ API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
