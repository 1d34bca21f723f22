// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value already populated by
// the configured binders, and returns a Response. Wrap turns it into an
// http.HandlerFunc; errors from binding, from the handler itself (via
// Error) or from rendering all go through a single ErrorHandler.
//
//	create := func(ctx handler.Context, req createPostRequest) handler.Response {
//		post, err := svc.Create(ctx, req.Title, req.Content)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(post, handler.WithStatus(http.StatusCreated))
//	}
//	r.Post("/", handler.Wrap(create,
//		handler.WithBinders[handler.Context, createPostRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, createPostRequest](errHandler),
//	))
package handler
