package server

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/config"
	"github.com/agenthands/concierge/internal/core"
	"github.com/agenthands/concierge/internal/llm"
	"github.com/agenthands/concierge/internal/logging"
	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/questions"
	"github.com/agenthands/concierge/internal/search"
	"github.com/agenthands/concierge/internal/userdata"
)

// Recommender and QuestionGenerator are what the handlers actually need, so
// tests can substitute stubs without touching real clients.
type Recommender interface {
	Recommend(ctx context.Context, req core.Request) model.PipelineResult
}

type QuestionGenerator interface {
	Generate(ctx context.Context, userQuery string, numQuestions, numAnswers int) ([]model.Question, error)
}

type Server struct {
	pipeline  Recommender
	questions QuestionGenerator
	store     *userdata.Store
	log       *zap.Logger
}

func New(pipeline Recommender, generator QuestionGenerator, store *userdata.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		pipeline:  pipeline,
		questions: generator,
		store:     store,
		log:       log,
	}
}

// NewServer wires the whole service from config file plus environment
// overrides. Missing provider credentials fail here, at startup.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	log := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if cfg.Tavily.APIKey == "" {
		log.Fatal("tavily_api_key_missing", zap.String("hint", "set TAVILY_API_KEY"))
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal("llm_client_init_failed", zap.Error(err))
	}

	tavily := search.NewTavilyClient(cfg.Tavily.APIKey, cfg.Tavily.BaseURL)
	retriever := search.NewRetriever(tavily, log)
	pipeline := core.NewPipeline(retriever, llmClient, cfg.Search, log)
	generator := questions.NewGenerator(llmClient, cfg.Questions, log)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	store := userdata.NewStore(rdb, log)

	return New(pipeline, generator, store, log)
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Tavily.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/health", s.Health)
	r.GET("/", s.Root)
	r.POST("/api/search", s.Search)
	r.POST("/api/generate-questions", s.GenerateQuestions)
	r.GET("/api/users/:id/history", s.SearchHistory)

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Recommendation service is running",
	})
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Shopping Recommendation Service",
		"version": "1.0.0",
		"endpoints": gin.H{
			"health":             "/health",
			"search":             "/api/search (POST)",
			"generate_questions": "/api/generate-questions (POST)",
		},
	})
}

type SearchRequest struct {
	Query       string             `json:"query" binding:"required,min=1"`
	Answers     map[string]string  `json:"answers"`
	Questions   []model.Question   `json:"questions"`
	UserID      string             `json:"user_id"`
	UserProfile *model.UserProfile `json:"user_profile"`
}

// Search runs the recommendation pipeline. Pipeline failures are part of the
// response contract, not HTTP errors: the body carries success=false and a
// message, always with status 200.
func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.UserProfile != nil {
		if err := req.UserProfile.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	requestID := uuid.NewString()
	log := s.log.With(zap.String("request_id", requestID))

	profile := req.UserProfile
	if profile == nil && req.UserID != "" && s.store.Available() {
		profile, _ = s.store.Profile(c.Request.Context(), req.UserID)
	}

	result := s.pipeline.Recommend(c.Request.Context(), core.Request{
		Query:     req.Query,
		Answers:   req.Answers,
		Questions: req.Questions,
		UserID:    req.UserID,
		Profile:   profile,
	})

	log.Info("search_request_completed",
		zap.Bool("success", result.Success),
		zap.Int("results", len(result.Results)))

	if result.Success && req.UserID != "" {
		s.store.RecordSearch(c.Request.Context(), req.UserID, userdata.SearchRecord{
			Query:   req.Query,
			Answers: req.Answers,
			Results: result.Results,
		})
	}

	c.JSON(http.StatusOK, result)
}

// SearchHistory returns the user's recent searches, newest first. The store
// is best-effort, so an unavailable backend reads as an empty history.
func (s *Server) SearchHistory(c *gin.Context) {
	userID := c.Param("id")

	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	records, _ := s.store.SearchHistory(c.Request.Context(), userID, limit)
	if records == nil {
		records = []userdata.SearchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "history": records})
}

type GenerateQuestionsRequest struct {
	UserQuery    string `json:"userQuery" binding:"required,min=1"`
	NumQuestions int    `json:"numQuestions" binding:"omitempty,min=1,max=10"`
	NumAnswers   int    `json:"numAnswers" binding:"omitempty,min=2,max=6"`
}

type GenerateQuestionsResponse struct {
	Success   bool             `json:"success"`
	Questions []model.Question `json:"questions,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (s *Server) GenerateQuestions(c *gin.Context) {
	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	qs, err := s.questions.Generate(c.Request.Context(), req.UserQuery, req.NumQuestions, req.NumAnswers)
	if err != nil {
		s.log.Error("generate_questions_failed", zap.Error(err))
		c.JSON(http.StatusOK, GenerateQuestionsResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, GenerateQuestionsResponse{Success: true, Questions: qs})
}
