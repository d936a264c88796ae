package app

import (
	"net/http"
	"timeRegistration/internal/handlers"
	"timeRegistration/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Services - всё, что нужно роутеру
type Services struct {
	Users interface {
		handlers.UserService
		middleware.UserResolver
	}
	Customers handlers.CustomerService
	Projects  handlers.ProjectService
	Tasks     handlers.TaskService
	Sessions  handlers.SessionService
	OptOuts   handlers.OptOutService
	CheckIns  handlers.CheckInService
	Comments  handlers.CommentService
	Health    handlers.HealthChecker
}

type RouterConfig struct {
	AllowedOrigins    []string
	RequestsPerMinute int
	Verifier          middleware.TokenVerifier
}

func NewRouter(cfg RouterConfig, s Services) *chi.Mux {
	userHandler := handlers.NewUserHandler(s.Users, s.OptOuts)
	customerHandler := handlers.NewCustomerHandler(s.Customers, s.Projects)
	taskHandler := handlers.NewTaskHandler(s.Tasks)
	sessionHandler := handlers.NewSessionHandler(s.Sessions)
	commentHandler := handlers.NewCommentHandler(s.Comments)
	checkInHandler := handlers.NewCheckInHandler(s.CheckIns)
	healthHandler := handlers.NewHealthHandler(s.Health)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RequestsPerMinute > 0 {
		r.Use(middleware.RateLimit(cfg.RequestsPerMinute))
	}

	r.Get("/health", healthHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Verifier))
		r.Use(middleware.CurrentUser(s.Users))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.GetCustomers)    // GET /api/customers
			r.Post("/", customerHandler.CreateCustomer) // POST /api/customers

			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", customerHandler.GetCustomer)
				r.Put("/", customerHandler.UpdateCustomer)
				r.Delete("/", customerHandler.DeleteCustomer)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", customerHandler.GetProjects) // GET /api/projects?customerId=
			r.Post("/", customerHandler.CreateProject)

			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", customerHandler.GetProject)
				r.Put("/", customerHandler.UpdateProject)
				r.Delete("/", customerHandler.DeleteProject)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.GetTasks)
					r.Post("/", taskHandler.CreateTask)

					r.Route("/{taskId}", func(r chi.Router) {
						r.Get("/", taskHandler.GetTask)
						r.Put("/", taskHandler.UpdateTask)
						r.Delete("/", taskHandler.DeleteTask)

						r.Post("/users", taskHandler.AssignUser)
						r.Delete("/users/{userId}", taskHandler.UnassignUser)
						r.Post("/users-batch", taskHandler.AssignUsers)
						r.Delete("/users-batch", taskHandler.UnassignUsers)

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", commentHandler.GetComments)
							r.Post("/", commentHandler.CreateComment)
							r.Put("/{commentId}", commentHandler.UpdateComment)
							r.Delete("/{commentId}", commentHandler.DeleteComment)
						})
					})
				})
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSessions)     // GET /api/sessions?userId=&state=...
			r.Post("/", sessionHandler.CreateSession)  // POST /api/sessions
			r.Put("/", sessionHandler.InvoiceSessions) // PUT /api/sessions - пакетный счёт

			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Put("/", sessionHandler.UpdateSession)
				r.Delete("/", sessionHandler.DeleteSession)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetUsers)
			r.Get("/me", userHandler.GetMe)

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)

				r.Route("/opt-outs", func(r chi.Router) {
					r.Get("/", userHandler.GetOptOuts)
					r.Post("/", userHandler.CreateOptOut)
					r.Put("/{optOutId}", userHandler.UpdateOptOut)
					r.Delete("/{optOutId}", userHandler.DeleteOptOut)
				})

				r.Get("/check-ins", checkInHandler.GetCheckIns)
			})
		})
	})

	return r
}
