package router

import (
	"net/http"

	jwtauth "pawpals/internal/adapters/auth/jwt"
	mem "pawpals/internal/adapters/storage/memory"
	pg "pawpals/internal/adapters/storage/postgres"
	"pawpals/internal/config"
	"pawpals/internal/domain/dogs"
	"pawpals/internal/domain/feedback"
	"pawpals/internal/domain/files"
	"pawpals/internal/domain/greetings"
	"pawpals/internal/domain/health"
	"pawpals/internal/domain/nearby"
	"pawpals/internal/domain/posts"
	"pawpals/internal/domain/reminders"
	"pawpals/internal/domain/users"
	"pawpals/internal/middleware"
	"pawpals/internal/platform/httpx"
	"pawpals/internal/platform/logger"
	"pawpals/internal/ports/auth"
	"pawpals/internal/ports/blob"
	"pawpals/internal/ports/moderation"

	_ "pawpals/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config *config.Config
	Logger logger.Logger

	// AuthVerifier explícito (p.ej. remoto). Si es nil se usa JWT propio,
	// salvo Config.Auth.DevMode: ahí no hay verifier y vale X-Debug-User-ID.
	AuthVerifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sqlx.DB

	// Opcionales; nil => implementación in-memory o deshabilitado.
	Sessions  auth.SessionStore
	Cache     health.Pinger
	Notifier  reminders.Notifier
	Moderator moderation.Moderator
	Blob      blob.Store
}

type repos struct {
	users     users.Repository
	dogs      dogs.Repository
	reminders reminders.Repository
	posts     posts.Repository
	greetings greetings.Repository
	feedback  feedback.Repository
	blobs     blob.Store
	sessions  auth.SessionStore
	database  health.Pinger
}

func buildRepos(opts Options) repos {
	store := mem.NewStore()
	rp := repos{sessions: store.Sessions()}

	if db := opts.DB; db != nil {
		rp.users = pg.NewUsersRepo(db)
		rp.dogs = pg.NewDogsRepo(db)
		rp.reminders = pg.NewRemindersRepo(db)
		rp.posts = pg.NewPostsRepo(db)
		rp.greetings = pg.NewGreetingsRepo(db)
		rp.feedback = pg.NewFeedbackRepo(db)
		rp.blobs = pg.NewBlobStore(db)
		rp.database = health.PingFunc(db.PingContext)
	} else {
		rp.users = store.Users()
		rp.dogs = store.Dogs()
		rp.reminders = store.Reminders()
		rp.posts = store.Posts()
		rp.greetings = store.Greetings()
		rp.feedback = store.Feedback()
		rp.blobs = store.Blobs()
		rp.database = store
	}

	if opts.Blob != nil {
		rp.blobs = opts.Blob
	}
	if opts.Sessions != nil {
		rp.sessions = opts.Sessions
	}
	return rp
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	moderator := opts.Moderator
	if moderator == nil {
		moderator = moderation.AllowAll{}
	}

	rp := buildRepos(opts)

	// Services por módulo
	tokens := jwtauth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, rp.sessions)
	usersSvc := users.NewService(rp.users, tokens, cfg.Auth.LoginCode)
	tokens.WithActiveCheck(usersSvc.IsActive)

	dogsSvc := dogs.NewService(rp.dogs, moderator)
	remindersSvc := reminders.NewService(rp.reminders, dogsSvc, opts.Notifier)
	postsSvc := posts.NewService(rp.posts, usersSvc, dogsSvc, moderator)
	greetingsSvc := greetings.NewService(rp.greetings, usersSvc, postsSvc, dogsSvc, cfg.Greetings.Cooldown)
	finder := nearby.NewFinder(postsSvc, usersSvc, dogsSvc, greetingsSvc, nearby.Options{
		ScanLimit: cfg.Nearby.ScanLimit,
		Window:    cfg.Nearby.Window,
	})
	feedbackSvc := feedback.NewService(rp.feedback, moderator)
	filesSvc := files.NewService(rp.blobs, cfg.Upload.MaxBytes)
	checker := &health.Checker{
		Database: rp.database,
		Storage:  rp.blobs,
		Cache:    opts.Cache,
	}

	verifier := opts.AuthVerifier
	if verifier == nil && !cfg.Auth.DevMode {
		verifier = tokens
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(verifier))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	health.RegisterRoutes(r, checker)
	users.RegisterRoutes(r, usersSvc)
	dogs.RegisterRoutes(r, dogsSvc)
	reminders.RegisterRoutes(r, remindersSvc)
	posts.RegisterRoutes(r, postsSvc)
	greetings.RegisterRoutes(r, greetingsSvc)
	nearby.RegisterRoutes(r, finder)
	feedback.RegisterRoutes(r, feedbackSvc)
	files.RegisterRoutes(r, filesSvc)

	return withCORS(r, cfg.CORS)
}

func withCORS(h http.Handler, c config.CORSConfig) http.Handler {
	origins := c.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		AllowCredentials: c.AllowCredentials,
	}).Handler(h)
}
