// Package docs SecureWeb API documentation
package docs

// Swagger documentation info
// @title SecureWeb API
// @version 1.0
// @description Authentication backend - stateless bearer tokens, email verification codes and async mail dispatch

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Login, logout, registration and password reset

// User Endpoints
// @tag.name users
// @tag.description Authenticated user information
