package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewHTTPRouter собирает маршруты API версии v1.
// Все чтения каталога и контента публичны, записи идут через AuthMiddleware.
// Разграничение ролей выполняют сами обработчики через пакет policy.
func NewHTTPRouter(h *HTTPHandler) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	authed := func(handler http.HandlerFunc) http.Handler {
		return h.AuthMiddleware(handler)
	}

	// Регистрация и выдача токенов
	api.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/token", h.ObtainToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.RefreshToken).Methods(http.MethodPost)

	// Управление пользователями. Маршрут /users/me регистрируется раньше
	// /users/{username}, иначе mux примет "me" за имя пользователя.
	api.Handle("/users/me", authed(h.Me)).Methods(http.MethodGet)
	api.Handle("/users/me", authed(h.UpdateMe)).Methods(http.MethodPatch)
	api.Handle("/users", authed(h.ListUsers)).Methods(http.MethodGet)
	api.Handle("/users", authed(h.CreateUser)).Methods(http.MethodPost)
	api.Handle("/users/{username}", authed(h.GetUser)).Methods(http.MethodGet)
	api.Handle("/users/{username}", authed(h.UpdateUser)).Methods(http.MethodPatch)
	api.Handle("/users/{username}", authed(h.DeleteUser)).Methods(http.MethodDelete)

	// Каталог: категории и жанры
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.Handle("/categories", authed(h.CreateCategory)).Methods(http.MethodPost)
	api.Handle("/categories/{slug}", authed(h.DeleteCategory)).Methods(http.MethodDelete)

	api.HandleFunc("/genres", h.ListGenres).Methods(http.MethodGet)
	api.Handle("/genres", authed(h.CreateGenre)).Methods(http.MethodPost)
	api.Handle("/genres/{slug}", authed(h.DeleteGenre)).Methods(http.MethodDelete)

	// Каталог: произведения
	api.HandleFunc("/titles", h.ListTitles).Methods(http.MethodGet)
	api.Handle("/titles", authed(h.CreateTitle)).Methods(http.MethodPost)
	api.HandleFunc("/titles/{title_id}", h.GetTitle).Methods(http.MethodGet)
	api.Handle("/titles/{title_id}", authed(h.UpdateTitle)).Methods(http.MethodPatch)
	api.Handle("/titles/{title_id}", authed(h.DeleteTitle)).Methods(http.MethodDelete)

	// Отзывы
	api.HandleFunc("/titles/{title_id}/reviews", h.ListReviews).Methods(http.MethodGet)
	api.Handle("/titles/{title_id}/reviews", authed(h.CreateReview)).Methods(http.MethodPost)
	api.HandleFunc("/titles/{title_id}/reviews/{review_id}", h.GetReview).Methods(http.MethodGet)
	api.Handle("/titles/{title_id}/reviews/{review_id}", authed(h.UpdateReview)).Methods(http.MethodPatch)
	api.Handle("/titles/{title_id}/reviews/{review_id}", authed(h.DeleteReview)).Methods(http.MethodDelete)

	// Комментарии к отзывам
	api.HandleFunc("/titles/{title_id}/reviews/{review_id}/comments", h.ListComments).Methods(http.MethodGet)
	api.Handle("/titles/{title_id}/reviews/{review_id}/comments", authed(h.CreateComment)).Methods(http.MethodPost)
	api.HandleFunc("/titles/{title_id}/reviews/{review_id}/comments/{comment_id}", h.GetComment).Methods(http.MethodGet)
	api.Handle("/titles/{title_id}/reviews/{review_id}/comments/{comment_id}", authed(h.UpdateComment)).Methods(http.MethodPatch)
	api.Handle("/titles/{title_id}/reviews/{review_id}/comments/{comment_id}", authed(h.DeleteComment)).Methods(http.MethodDelete)

	return router
}
