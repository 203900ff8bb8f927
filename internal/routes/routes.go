package routes

import (
	"docflow-backend/internal/config"
	"docflow-backend/internal/handlers"
	"docflow-backend/internal/middleware"
	"docflow-backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(120))

	authService := services.NewAuthService(db)
	categoryService := services.NewCategoryService(db)
	typeService := services.NewDocumentTypeService(db)
	documentService := services.NewDocumentService(db, cfg)
	registrationService := services.NewRegistrationService(db)
	dropboxService := services.NewDropboxService(db, cfg)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	typeHandler := handlers.NewDocumentTypeHandler(typeService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	dropboxHandler := handlers.NewDropboxHandler(dropboxService)

	api := router.Group("/api")

	public := api.Group("")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public.GET("/dropbox/callback", dropboxHandler.Callback)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db, cfg))
	{
		protected.GET("/auth/me", authHandler.GetMe)

		documents := protected.Group("/documents")
		{
			documents.GET("", documentHandler.GetDocuments)
			documents.POST("", documentHandler.CreateDocument)

			documents.GET("/:id/registrations", registrationHandler.GetRegistrationsForDocument)
			documents.POST("/:id/registrations", registrationHandler.CreateRegistration)

			documents.POST("/:id/upload", documentHandler.UploadFile)
			documents.GET("/:id/files", documentHandler.GetFileVersions)
			documents.GET("/:id/download", documentHandler.DownloadFile)
			documents.GET("/:id/files/:fileId/download", documentHandler.DownloadFileVersion)

			documents.GET("/:id", documentHandler.GetDocument)
			documents.PUT("/:id", documentHandler.UpdateDocument)
			documents.DELETE("/:id", documentHandler.DeleteDocument)
		}

		registrations := protected.Group("/registrations")
		{
			registrations.GET("/:id", registrationHandler.GetRegistration)
			registrations.PUT("/:id", registrationHandler.UpdateRegistration)
			registrations.DELETE("/:id", registrationHandler.DeleteRegistration)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		documentTypes := protected.Group("/document-types")
		{
			documentTypes.GET("", typeHandler.GetDocumentTypes)
			documentTypes.POST("", typeHandler.CreateDocumentType)
			documentTypes.PUT("/:id", typeHandler.UpdateDocumentType)
			documentTypes.DELETE("/:id", typeHandler.DeleteDocumentType)
		}

		dropbox := protected.Group("/dropbox")
		{
			dropbox.GET("/auth-url", dropboxHandler.GetAuthURL)
			dropbox.POST("/connect", dropboxHandler.Connect)
			dropbox.GET("/status", dropboxHandler.Status)
			dropbox.GET("/list", dropboxHandler.ListRoot)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
