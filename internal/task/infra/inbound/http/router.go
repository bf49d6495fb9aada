package http

import "github.com/gin-gonic/gin"

// RegisterTaskRoutes registra las rutas HTTP para el dominio de Tareas.
func RegisterTaskRoutes(r *gin.Engine, handler *TaskHandler) {
	// Agrupamos todas las rutas de tareas bajo el prefijo "/tasks"
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", handler.CreateTask)            // Crear una nueva tarea
		tasks.GET("/", handler.ListTasks)              // Listar tareas con el filtro de 4 dimensiones
		tasks.GET("/search", handler.SearchTasks)      // Búsqueda con criterios, paginación y orden
		tasks.GET("/calendar", handler.Calendar)       // Rejilla mensual
		tasks.GET("/stats", handler.Stats)             // Contadores hoy/vencidas
		tasks.GET("/facets", handler.Facets)           // Contadores de la barra lateral
		tasks.GET("/:id", handler.GetTask)             // Obtener una tarea por su ID
		tasks.PUT("/:id", handler.UpdateTask)          // Actualizar una tarea existente
		tasks.PATCH("/:id/toggle", handler.ToggleTask) // Alternar pending ⇄ completed
		tasks.DELETE("/:id", handler.DeleteTask)       // Eliminar una tarea

		analytics := tasks.Group("/analytics")
		{
			analytics.GET("/trend", handler.DailyTrend)
			analytics.GET("/completion-time", handler.AverageCompletionTime)
		}
	}
}
