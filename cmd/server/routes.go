package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"wtyczki.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	oauthHandler    *handlers.OAuthHandler
	apiKeyHandler   *handlers.ApiKeyHandler
	accountHandler  *handlers.AccountHandler
	ledgerHandler   *handlers.LedgerHandler
	purchaseHandler *handlers.PurchaseHandler
	authMiddleware  gin.HandlerFunc
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// OAuth authorization server
		oauth := v1.Group("/oauth")
		{
			oauth.POST("/authorize", d.authMiddleware, d.oauthHandler.Authorize)
			oauth.POST("/token", d.oauthHandler.Token)
			oauth.POST("/revoke", d.oauthHandler.Revoke)
		}

		// API key management (protected)
		apiKeys := v1.Group("/api-keys")
		apiKeys.Use(d.authMiddleware)
		{
			apiKeys.POST("", d.apiKeyHandler.CreateApiKey)
			apiKeys.GET("", d.apiKeyHandler.ListApiKeys)
			apiKeys.DELETE("/:id", d.apiKeyHandler.RevokeApiKey)
		}

		// Account routes (protected)
		account := v1.Group("/account")
		account.Use(d.authMiddleware)
		{
			account.GET("/balance", d.accountHandler.GetBalance)
			account.GET("/usage", d.accountHandler.ListUsage)
			account.GET("/transactions", d.accountHandler.ListTransactions)
			account.DELETE("", d.accountHandler.DeleteAccount)
		}

		// Token ledger (protected; callers are MCP proxies)
		tokens := v1.Group("/tokens")
		tokens.Use(d.authMiddleware)
		{
			tokens.POST("/consume", d.ledgerHandler.Consume)
		}

		// Payment provider callbacks (authenticated by shared secret)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/purchase-completed", d.purchaseHandler.PurchaseCompleted)
		}
	}
}
