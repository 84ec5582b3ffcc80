package app

import (
	"net/http"

	"github.com/oluseyi/kycflow/internal/handler"
	"github.com/oluseyi/kycflow/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		UserRepo:      app.DB.User(),
		ActivityRepo:  app.DB.Activity(),
		LoginAttempts: app.Cache,
		Helper:        app.helper,
		Mailer:        app.Mailer,
		Config:        &app.Config,
		ErrHandler:    app.errorHandler,
	})

	kycHandler := handler.NewKycHandler(&handler.KycHandler{
		KycFormRepo:  app.DB.KycForm(),
		CreditRepo:   app.DB.Credit(),
		ActivityRepo: app.DB.Activity(),
		DB:           app.DB,
		Stream:       app.Kafka,
		Helper:       app.helper,
		ErrHandler:   app.errorHandler,
	})

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /signup", authHandler.HandleSignUp)
	mux.HandleFunc("POST /signupAdmin", authHandler.HandleSignUpAdmin)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)

	mux.Handle("POST /submitKycForm", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(kycHandler.HandleSubmitKycForm)))
	mux.Handle("POST /confirmKycForm", middlewareRepo.RequireAdminUser(http.HandlerFunc(kycHandler.HandleConfirmKycForm)))
	mux.Handle("POST /rejectKycForm", middlewareRepo.RequireAdminUser(http.HandlerFunc(kycHandler.HandleRejectKycForm)))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
