package mockapp

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const maxUploadSize = 16 << 20 // 16MB

// Notification describes the delivery notice fired after an upload.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// NotifyFunc receives one Notification per successful upload.
type NotifyFunc func(Notification)

// Config configures the reference server.
type Config struct {
	// AuthSecret is the HS256 secret bearer tokens must be signed with.
	AuthSecret string
	// NotifyRecipient is the address upload notices are sent to.
	NotifyRecipient string
	// Notify, when set, is invoked synchronously after each upload.
	Notify NotifyFunc
}

type storedObject struct {
	data       []byte
	uploadedAt time.Time
}

// Server is the in-memory document-vault reference implementation.
type Server struct {
	cfg    Config
	engine *gin.Engine

	mu      sync.RWMutex
	objects map[string]storedObject
}

type objectInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// New builds the server and registers its routes.
func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		objects: make(map[string]storedObject),
	}

	logger := zap.L().Named("mockapp")
	s.engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	s.engine.Use(ginzap.RecoveryWithZap(logger, true))

	v1 := s.engine.Group("/api/v1")
	v1.Use(s.authMiddleware())
	v1.GET("/objects", s.listObjects)
	v1.POST("/objects/:key", s.uploadObject)
	v1.GET("/objects/:key", s.getObject)
	v1.DELETE("/objects/:key", s.deleteObject)

	return s
}

// Handler exposes the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.AuthSecret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
			return
		}

		c.Next()
	}
}

func (s *Server) uploadObject(c *gin.Context) {
	key := c.Param("key")

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	s.mu.Lock()
	_, existed := s.objects[key]
	s.objects[key] = storedObject{data: data, uploadedAt: time.Now().UTC()}
	s.mu.Unlock()

	if s.cfg.Notify != nil {
		s.cfg.Notify(Notification{
			Recipient: s.cfg.NotifyRecipient,
			Subject:   fmt.Sprintf("Document %s uploaded", key),
			Body:      fmt.Sprintf("Document %s (%d bytes) was stored.", key, len(data)),
		})
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"key": key, "size": len(data)})
}

func (s *Server) listObjects(c *gin.Context) {
	s.mu.RLock()
	infos := make([]objectInfo, 0, len(s.objects))
	for key, obj := range s.objects {
		infos = append(infos, objectInfo{
			Key:        key,
			Size:       int64(len(obj.data)),
			UploadedAt: obj.uploadedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	c.JSON(http.StatusOK, infos)
}

func (s *Server) getObject(c *gin.Context) {
	key := c.Param("key")

	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", obj.data)
}

func (s *Server) deleteObject(c *gin.Context) {
	key := c.Param("key")

	s.mu.Lock()
	_, ok := s.objects[key]
	delete(s.objects, key)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
