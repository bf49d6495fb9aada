package http

import "github.com/gin-gonic/gin"

// RegisterCategoryRoutes registra las rutas HTTP para el dominio de Categorías.
func RegisterCategoryRoutes(r *gin.Engine, handler *CategoryHandler) {
	categories := r.Group("/categories")
	{
		categories.POST("/", handler.CreateCategory)      // Crear una nueva categoría
		categories.GET("/", handler.ListCategories)       // Listar todas las categorías
		categories.GET("/stats", handler.Stats)           // Completitud por categoría
		categories.GET("/:id", handler.GetCategory)       // Obtener una categoría por su ID
		categories.PUT("/:id", handler.UpdateCategory)    // Renombrar/recolorear (con cascada)
		categories.DELETE("/:id", handler.DeleteCategory) // Eliminar si no está en uso
	}
}
