package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"anoa.com/campusforum/internal/config"
	"anoa.com/campusforum/internal/jobs"
	"anoa.com/campusforum/internal/middleware"
	"anoa.com/campusforum/pkg/ratelimiter"
	"anoa.com/campusforum/pkg/storage"

	accessHttp "anoa.com/campusforum/internal/modules/access/delivery/http"
	accessRepo "anoa.com/campusforum/internal/modules/access/repository"
	accessService "anoa.com/campusforum/internal/modules/access/service"

	announcementHttp "anoa.com/campusforum/internal/modules/announcement/delivery/http"
	announcementRepo "anoa.com/campusforum/internal/modules/announcement/repository"
	announcementService "anoa.com/campusforum/internal/modules/announcement/service"

	groupAppHttp "anoa.com/campusforum/internal/modules/groupapplication/delivery/http"
	groupAppRepo "anoa.com/campusforum/internal/modules/groupapplication/repository"
	groupAppService "anoa.com/campusforum/internal/modules/groupapplication/service"

	lineGroupHttp "anoa.com/campusforum/internal/modules/linegroup/delivery/http"
	lineGroupRepo "anoa.com/campusforum/internal/modules/linegroup/repository"
	lineGroupService "anoa.com/campusforum/internal/modules/linegroup/service"

	notiHttp "anoa.com/campusforum/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/campusforum/internal/modules/notification/repository"
	notifService "anoa.com/campusforum/internal/modules/notification/service"

	pointsHttp "anoa.com/campusforum/internal/modules/points/delivery/http"
	pointsRepo "anoa.com/campusforum/internal/modules/points/repository"
	pointsService "anoa.com/campusforum/internal/modules/points/service"

	postHttp "anoa.com/campusforum/internal/modules/post/delivery/http"
	postRepo "anoa.com/campusforum/internal/modules/post/repository"
	postService "anoa.com/campusforum/internal/modules/post/service"

	profileHttp "anoa.com/campusforum/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/campusforum/internal/modules/profile/repository"
	profileService "anoa.com/campusforum/internal/modules/profile/service"

	reportHttp "anoa.com/campusforum/internal/modules/report/delivery/http"
	reportRepo "anoa.com/campusforum/internal/modules/report/repository"
	reportService "anoa.com/campusforum/internal/modules/report/service"

	searchService "anoa.com/campusforum/internal/modules/search/service"

	superadminHttp "anoa.com/campusforum/internal/modules/superadmin/delivery/http"
	superadminRepo "anoa.com/campusforum/internal/modules/superadmin/repository"
	superadminService "anoa.com/campusforum/internal/modules/superadmin/service"

	statsHttp "anoa.com/campusforum/internal/modules/stats/delivery/http"
	statsRepo "anoa.com/campusforum/internal/modules/stats/repository"
	statsService "anoa.com/campusforum/internal/modules/stats/service"

	tagHttp "anoa.com/campusforum/internal/modules/tag/delivery/http"
	tagRepo "anoa.com/campusforum/internal/modules/tag/repository"
	tagService "anoa.com/campusforum/internal/modules/tag/service"

	uploadHttp "anoa.com/campusforum/internal/modules/upload/delivery/http"
	uploadService "anoa.com/campusforum/internal/modules/upload/service"

	viewService "anoa.com/campusforum/internal/modules/view/service"

	voteHttp "anoa.com/campusforum/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/campusforum/internal/modules/vote/repository"
	voteService "anoa.com/campusforum/internal/modules/vote/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
	log         *slog.Logger
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *slog.Logger) (*Server, error) {
	var imageStorage storage.ImageStorage
	if cld, err := storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder); err != nil {
		log.Warn("cloudinary disabled, image uploads unavailable", "error", err)
	} else {
		imageStorage = cld
	}

	var meiliSvc searchService.MeiliSearchService
	if meiliHost := cfg.MeiliSearchHost; meiliHost != "" {
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		meiliSvc = searchService.NewMeiliSearchService(meiliClient, log)
	}

	cooldown := ratelimiter.NewCooldown(redisClient)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, cfg.WriteTimeout)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	// Access: role resolver + admin console login
	accessRepository := accessRepo.NewAccessRepository(db)
	roleResolver := accessService.NewRoleResolver(accessRepository, cfg.RoleCheckTimeout)
	adminAuthSvc := accessService.NewAdminAuthService(accessRepository, cfg.AdminJWTSecret, cfg.AdminTokenTTL, cfg.WriteTimeout)
	adminAuthHandler := accessHttp.NewAdminAuthHandler(adminAuthSvc)

	// Points ledger
	ledgerRepository := pointsRepo.NewLedgerRepository(db)
	ledger := pointsService.NewLedger(ledgerRepository, notificationSvc, cfg.LedgerTimeout)
	dailyLogin := pointsService.NewDailyLogin(ledgerRepository, ledger, redisClient, cfg.DailyResetLocation, cfg.LedgerTimeout)
	pointsSvc := pointsService.NewPointsService(ledgerRepository, cfg.ProfileReadTimeout, cfg.WriteTimeout)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	profileRepository := profileRepo.NewProfileRepository(db)
	profileSvc := profileService.NewProfileService(profileRepository, imageStorage, cfg.WriteTimeout)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	postRepository := postRepo.NewPostRepository(db)
	viewCounter := viewService.NewViewCounter(redisClient, postRepository)
	postSvc := postService.NewPostService(postRepository, profileSvc, ledger, roleResolver, notificationSvc, meiliSvc, viewCounter, cooldown, postService.Limits{
		GlobalCooldown: cfg.RateLimitGlobal,
		PostCooldown:   cfg.RateLimitPost,
		PinDuration:    cfg.PinDuration,
		Timeout:        cfg.WriteTimeout,
	})
	postHandler := postHttp.NewPostHandler(postSvc)

	voteRepository := voteRepo.NewVoteRepository(db)
	voteSvc := voteService.NewVoteService(voteRepository, ledger, notificationSvc, cfg.WriteTimeout)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	lineGroupRepository := lineGroupRepo.NewLineGroupRepository(db)
	lineGroupSvc := lineGroupService.NewLineGroupService(lineGroupRepository, roleResolver, ledger, profileSvc, imageStorage, cfg.WriteTimeout)
	lineGroupHandler := lineGroupHttp.NewLineGroupHandler(lineGroupSvc)

	groupAppRepository := groupAppRepo.NewGroupApplicationRepository(db)
	groupAppSvc := groupAppService.NewGroupApplicationService(groupAppRepository, roleResolver, ledger, profileSvc, notificationSvc, cfg.WriteTimeout)
	groupAppHandler := groupAppHttp.NewGroupApplicationHandler(groupAppSvc)

	announcementRepository := announcementRepo.NewAnnouncementRepository(db)
	announcementSvc := announcementService.NewAnnouncementService(announcementRepository, roleResolver, cfg.WriteTimeout)
	announcementHandler := announcementHttp.NewAnnouncementHandler(announcementSvc)

	tagRepository := tagRepo.NewTagRepository(db)
	tagSvc := tagService.NewTagService(tagRepository, roleResolver, meiliSvc, cfg.WriteTimeout)
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	reportRepository := reportRepo.NewReportRepository(db)
	reportSvc := reportService.NewReportService(reportRepository, roleResolver, profileSvc, notificationSvc, cfg.WriteTimeout)
	reportHandler := reportHttp.NewReportHandler(reportSvc)

	statsRepository := statsRepo.NewStatsRepository(db)
	statsSvc := statsService.NewStatsService(statsRepository, cfg.ProfileReadTimeout)
	statsHandler := statsHttp.NewStatsHandler(statsSvc)

	uploadSvc := uploadService.NewUploadService(imageStorage, cfg.WriteTimeout)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	superadminRepository := superadminRepo.NewSuperadminRepository(db)
	superadminSvc := superadminService.NewSuperadminService(superadminRepository, pointsSvc, notificationSvc, cfg.WriteTimeout)
	superadminHandler := superadminHttp.NewSuperadminHandler(superadminSvc)

	scheduler := jobs.NewScheduler(log, cfg.WriteTimeout)
	for _, job := range []jobs.Job{
		jobs.NewPinExpiryJob(postSvc, log),
		jobs.NewLedgerAuditJob(pointsSvc, log),
		jobs.NewViewSyncJob(viewCounter, log),
	} {
		if err := scheduler.Register(job); err != nil {
			return nil, err
		}
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.SupabaseJWTSecret, cfg.AdminJWTSecret, profileSvc, dailyLogin, roleResolver)
	loginLimiter := ratelimiter.NewIPLimiter(5, time.Minute)

	api := router.Group("/api")

	// Admin console login
	api.POST("/admin-auth/login", loginLimiter.Middleware(), adminAuthHandler.Login)

	// Public reads (viewer is optional)
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/posts", postHandler.ListPosts)
		public.GET("/posts/similar", postHandler.SimilarPosts)
		public.GET("/posts/:post_id", postHandler.GetPost)
		public.GET("/line-groups", lineGroupHandler.ListGroups)
		public.GET("/line-groups/:id", lineGroupHandler.GetGroup)
		public.GET("/profile/:username", profileHandler.GetProfileByUsername)
		public.GET("/points/leaderboard", pointsHandler.GetLeaderboard)
		public.GET("/announcements", announcementHandler.ListAnnouncements)
		public.GET("/announcements/:id", announcementHandler.GetAnnouncement)
		public.GET("/tags/hot", tagHandler.HotTags)
		public.GET("/stats/community", statsHandler.Community)
		public.GET("/stats/top-users", statsHandler.TopUsers)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Points routes
		protected.GET("/points/profile", pointsHandler.GetProfile)
		protected.PATCH("/points/profile", profileHandler.UpdateProfile)
		protected.GET("/points/ranking", pointsHandler.GetRanking)
		protected.GET("/points/history", pointsHandler.GetHistory)

		// Post routes
		protected.POST("/posts", postHandler.CreatePost)
		protected.POST("/posts/:post_id/replies", postHandler.CreateReply)
		protected.POST("/posts/:post_id/pin", postHandler.PinPost)
		protected.POST("/posts/:post_id/close", postHandler.ClosePost)
		protected.POST("/posts/:post_id/report", reportHandler.ReportPost)
		protected.POST("/posts/:post_id/replies/:reply_id/report", reportHandler.ReportReply)

		// Vote routes
		protected.POST("/posts/:post_id/vote", voteHandler.VotePost)
		protected.POST("/replies/:reply_id/vote", voteHandler.VoteReply)

		// Line group routes
		protected.POST("/line-groups", authMiddleware.RequireAdmin(), lineGroupHandler.CreateGroup)
		protected.PATCH("/line-groups/:id", lineGroupHandler.UpdateGroup)
		protected.DELETE("/line-groups/:id", lineGroupHandler.DeleteGroup)
		protected.POST("/line-groups/:id/report", reportHandler.ReportGroup)

		// Line group applications and creation requests
		protected.POST("/line-groups/:id/apply", groupAppHandler.Apply)
		protected.GET("/line-groups/:id/applications", groupAppHandler.ListGroupApplications)
		protected.PATCH("/line-groups/applications/:application_id/review", groupAppHandler.ReviewApplication)
		protected.GET("/line-groups/my-applications", groupAppHandler.MyApplications)
		protected.GET("/line-groups/my-managed-groups/applications", groupAppHandler.ManagedApplications)
		protected.POST("/line-groups/creation-requests", groupAppHandler.RequestGroup)
		protected.GET("/line-groups/creation-requests", groupAppHandler.ListRequests)
		protected.PATCH("/line-groups/creation-requests/:request_id/review", authMiddleware.RequireAdmin(), groupAppHandler.ReviewRequest)

		protected.POST("/uploads", uploadHandler.UploadImage)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/announcements", announcementHandler.CreateAnnouncement)
			adminGroup.PATCH("/announcements/:id", announcementHandler.UpdateAnnouncement)
			adminGroup.DELETE("/announcements/:id", announcementHandler.DeleteAnnouncement)

			adminGroup.GET("/admin/tags", tagHandler.ListTags)
			adminGroup.PUT("/admin/tags/rename", tagHandler.RenameTag)
			adminGroup.POST("/admin/tags/merge", tagHandler.MergeTags)
			adminGroup.DELETE("/admin/tags/:tag", tagHandler.DeleteTag)

			adminGroup.GET("/reports", reportHandler.ListReports)
			adminGroup.PATCH("/reports/:id/review", reportHandler.ReviewReport)
		}

		// Superadmin routes
		superadminGroup := protected.Group("/superadmin")
		superadminGroup.Use(authMiddleware.RequireSuperadmin())
		{
			superadminGroup.GET("/stats", superadminHandler.GetStats)
			superadminGroup.GET("/users", superadminHandler.ListUsers)
			superadminGroup.PATCH("/users/:id/role", superadminHandler.UpdateRole)
			superadminGroup.DELETE("/users/:id", superadminHandler.DeleteUser)
			superadminGroup.GET("/ledger-audit", superadminHandler.LedgerAudit)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		log:         log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests and the
// job scheduler.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.scheduler.Stop(context.Background())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
