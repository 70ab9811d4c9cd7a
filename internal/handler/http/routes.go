package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-collection-sync/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	router.Get("/version", h.getServerVersion)

	router.Route("/sync", func(r chi.Router) {
		r.Use(
			withBodyLimit(h.limits.MaxCompressedBytes()),
			withGZip,
			withBodyLimit(h.limits.MaxUncompressedBytes()),
			h.withSyncRequest,
		)

		// the only method callable without a host key
		r.Post("/"+models.MethodHostKey, h.hostKey)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.Post("/"+models.MethodMeta, h.meta)
			r.Post("/"+models.MethodStart, h.start)
			r.Post("/"+models.MethodApplyGraves, h.applyGraves)
			r.Post("/"+models.MethodApplyChanges, h.applyChanges)
			r.Post("/"+models.MethodChunk, h.chunk)
			r.Post("/"+models.MethodApplyChunk, h.applyChunk)
			r.Post("/"+models.MethodSanityCheck, h.sanityCheck)
			r.Post("/"+models.MethodFinish, h.finish)
			r.Post("/"+models.MethodAbort, h.abort)
			r.Post("/"+models.MethodUpload, h.upload)
			r.Post("/"+models.MethodDownload, h.download)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
