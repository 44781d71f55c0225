package router

import (
	"microTaskMarket/domain"
	"microTaskMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/me", handler.Me, authRequired)
	users.PUT("/me", handler.UpdateProfile, authRequired)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.PATCH("/:id/role", handler.UpdateRole, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupTaskRoutes(api *echo.Group, handler *rest.TasksHandler, authRequired echo.MiddlewareFunc, roleOnly func(string) echo.MiddlewareFunc) {
	tasks := api.Group("/tasks", authRequired)

	tasks.GET("", handler.GetOpenTasks, roleOnly(domain.RoleWorker))
	tasks.GET("/mine", handler.GetMyTasks, roleOnly(domain.RoleBuyer))
	tasks.GET("/:id", handler.GetTaskByID)
	tasks.POST("", handler.CreateTask, roleOnly(domain.RoleBuyer))
	tasks.PATCH("/:id", handler.UpdateTask, roleOnly(domain.RoleBuyer))
	tasks.DELETE("/:id", handler.DeleteTask, roleOnly(domain.RoleBuyer))
}

func SetupSubmissionRoutes(api *echo.Group, handler *rest.SubmissionsHandler, authRequired echo.MiddlewareFunc, roleOnly func(string) echo.MiddlewareFunc) {
	submissions := api.Group("/submissions", authRequired)
	submissions.POST("", handler.SubmitWork, roleOnly(domain.RoleWorker))
	submissions.GET("/mine", handler.GetMySubmissions, roleOnly(domain.RoleWorker))

	buyer := api.Group("/buyer/submissions", authRequired, roleOnly(domain.RoleBuyer))
	buyer.GET("/pending", handler.GetPendingSubmissions)
	buyer.PATCH("/:id/approve", handler.ApproveSubmission)
	buyer.PATCH("/:id/reject", handler.RejectSubmission)
}

func SetupWithdrawalRoutes(api *echo.Group, handler *rest.WithdrawalsHandler, authRequired echo.MiddlewareFunc, roleOnly func(string) echo.MiddlewareFunc) {
	withdrawals := api.Group("/withdrawals", authRequired, roleOnly(domain.RoleWorker))
	withdrawals.POST("", handler.RequestWithdrawal)
	withdrawals.GET("/mine", handler.GetMyWithdrawals)

	admin := api.Group("/admin/withdraw-requests", authRequired, roleOnly(domain.RoleAdmin))
	admin.GET("", handler.GetPendingWithdrawals)
	admin.PATCH("/:id/approve", handler.ApproveWithdrawal)
	admin.PATCH("/:id/reject", handler.RejectWithdrawal)
}

func SetupPaymentRoutes(api *echo.Group, handler *rest.PaymentsHandler, authRequired echo.MiddlewareFunc) {
	payments := api.Group("/payments", authRequired)
	payments.POST("/intent", handler.CreateIntent)
	payments.GET("", handler.GetMyPayments)
}

func SetupWebhookRoutes(api *echo.Group, handler *rest.WebhookHandler) {
	webhook := api.Group("/webhook")
	webhook.POST("/payments", handler.HandlePaymentWebhook)
}

func SetupNotificationRoutes(api *echo.Group, handler *rest.NotificationsHandler, authRequired echo.MiddlewareFunc) {
	notifications := api.Group("/notifications", authRequired)
	notifications.GET("", handler.GetMyNotifications)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)
	admin.GET("/stats", handler.GetStats)
}
