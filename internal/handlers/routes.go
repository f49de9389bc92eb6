package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Mutating
// routes require a valid access-token cookie; read routes accept anonymous
// requests but still resolve the viewer so visibility filters apply.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:         deps.Users,
		Sessions:      deps.Sessions,
		Subscriptions: deps.Subscriptions,
		Storage:       deps.Storage,
		Cleaner:       deps.Cleaner,
		Limiter:       deps.Limiter,
		Cookies:       deps.Cookies,
	}
	videos := VideoHandler{
		Videos:         deps.Videos,
		Users:          deps.Users,
		Storage:        deps.Storage,
		Cleaner:        deps.Cleaner,
		Prober:         deps.Prober,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{
		Subscriptions:      deps.Subscriptions,
		Users:              deps.Users,
		AllowSelfSubscribe: deps.AllowSelfSubscribe,
	}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users}
	dashboard := DashboardHandler{Stats: deps.Stats, ChannelVideos: deps.ChannelVideos}

	requireAuth := middleware.RequireAuth(deps.Sessions)
	optionalAuth := middleware.OptionalAuth(deps.Sessions)

	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	open := func(h http.HandlerFunc) http.Handler { return optionalAuth(h) }

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.Handle("POST /api/v1/users/logout", authed(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", authed(users.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", authed(users.CurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", authed(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", authed(users.Avatar))
	mux.Handle("PATCH /api/v1/users/cover-image", authed(users.CoverImage))
	mux.Handle("GET /api/v1/users/channel/{username}", open(users.Channel))

	mux.Handle("GET /api/v1/videos", open(videos.Feed))
	mux.Handle("POST /api/v1/videos", authed(videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", open(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", authed(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", authed(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", authed(videos.TogglePublish))

	mux.Handle("POST /api/v1/tweets", authed(tweets.Create))
	mux.Handle("GET /api/v1/tweets/user/{userId}", open(tweets.ListForUser))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", authed(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", authed(tweets.Delete))

	mux.Handle("GET /api/v1/comments/{videoId}", open(comments.Thread))
	mux.Handle("POST /api/v1/comments/{videoId}", authed(comments.Create))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", authed(comments.Update))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", authed(comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", authed(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", authed(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", authed(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", authed(likes.LikedVideos))

	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", authed(subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/c/{channelId}", open(subscriptions.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", open(subscriptions.SubscribedChannels))

	mux.Handle("POST /api/v1/playlist", authed(playlists.Create))
	mux.Handle("GET /api/v1/playlist/{playlistId}", open(playlists.Get))
	mux.Handle("PATCH /api/v1/playlist/{playlistId}", authed(playlists.Update))
	mux.Handle("DELETE /api/v1/playlist/{playlistId}", authed(playlists.Delete))
	mux.Handle("GET /api/v1/playlist/user/{userId}", open(playlists.ListForUser))
	mux.Handle("PATCH /api/v1/playlist/add/{videoId}/{playlistId}", authed(playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlist/remove/{videoId}/{playlistId}", authed(playlists.RemoveVideo))

	mux.Handle("GET /api/v1/dashboard/stats", authed(dashboard.StatsOverview))
	mux.Handle("GET /api/v1/dashboard/videos", authed(dashboard.Videos))
}
