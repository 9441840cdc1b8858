package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/model"
)

// resource is the set of operations one kind supports. T is the write
// payload and edit view; S is the show view.
type resource[T, S any] struct {
	kind   model.Kind
	create func(ctx context.Context, in T) (T, error)
	update func(ctx context.Context, uuid string, in T) (T, error)
	edit   func(ctx context.Context, uuid string) (T, error)
	show   func(ctx context.Context, uuid string) (S, error)
}

func (s *Server) registerRoutes(api *gin.RouterGroup) {
	p := s.Playbill

	mount(s, api.Group("/materials"), resource[model.Material, model.MaterialShow]{
		kind:   model.KindMaterial,
		create: p.CreateMaterial,
		update: p.UpdateMaterial,
		edit:   p.EditMaterial,
		show:   p.ShowMaterial,
	})
	mount(s, api.Group("/productions"), resource[model.Production, model.ProductionShow]{
		kind:   model.KindProduction,
		create: p.CreateProduction,
		update: p.UpdateProduction,
		edit:   p.EditProduction,
		show:   p.ShowProduction,
	})
	mount(s, api.Group("/venues"), resource[model.Venue, model.VenueShow]{
		kind:   model.KindVenue,
		create: p.CreateVenue,
		update: p.UpdateVenue,
		edit:   p.EditVenue,
		show:   p.ShowVenue,
	})
	mount(s, api.Group("/award-ceremonies"), resource[model.AwardCeremony, model.AwardCeremonyShow]{
		kind:   model.KindAwardCeremony,
		create: p.CreateAwardCeremony,
		update: p.UpdateAwardCeremony,
		edit:   p.EditAwardCeremony,
		show:   p.ShowAwardCeremony,
	})

	for path, kind := range map[string]model.Kind{"/people": model.KindPerson, "/companies": model.KindCompany} {
		mount(s, api.Group(path), entityResource(s, kind, func(ctx context.Context, uuid string) (model.PersonShow, error) {
			return p.ShowPerson(ctx, kind, uuid)
		}))
	}
	mount(s, api.Group("/characters"), entityResource(s, model.KindCharacter, p.ShowCharacter))
	mount(s, api.Group("/awards"), entityResource(s, model.KindAward, p.ShowAward))

	for path, kind := range map[string]model.Kind{
		"/materials":   model.KindMaterial,
		"/productions": model.KindProduction,
		"/people":      model.KindPerson,
		"/companies":   model.KindCompany,
	} {
		api.GET(path+"/:uuid/awards", func(c *gin.Context) {
			out, err := s.Playbill.FindAwards(c.Request.Context(), kind, c.Param("uuid"))
			s.respond(c, http.StatusOK, out, err)
		})
	}
}

func entityResource[S any](s *Server, kind model.Kind, show func(ctx context.Context, uuid string) (S, error)) resource[model.Entity, S] {
	p := s.Playbill
	return resource[model.Entity, S]{
		kind: kind,
		create: func(ctx context.Context, in model.Entity) (model.Entity, error) {
			return p.CreateEntity(ctx, kind, in)
		},
		update: func(ctx context.Context, uuid string, in model.Entity) (model.Entity, error) {
			return p.UpdateEntity(ctx, kind, uuid, in)
		},
		edit: func(ctx context.Context, uuid string) (model.Entity, error) {
			return p.EditEntity(ctx, kind, uuid)
		},
		show: show,
	}
}

func mount[T, S any](s *Server, g *gin.RouterGroup, r resource[T, S]) {
	g.GET("", func(c *gin.Context) {
		out, err := s.Playbill.List(c.Request.Context(), r.kind)
		s.respond(c, http.StatusOK, out, err)
	})
	g.POST("", func(c *gin.Context) {
		var in T
		if !s.bind(c, &in) {
			return
		}
		out, err := r.create(c.Request.Context(), in)
		s.respond(c, http.StatusCreated, out, err)
	})
	g.GET("/:uuid", func(c *gin.Context) {
		out, err := r.show(c.Request.Context(), c.Param("uuid"))
		s.respond(c, http.StatusOK, out, err)
	})
	g.GET("/:uuid/edit", func(c *gin.Context) {
		out, err := r.edit(c.Request.Context(), c.Param("uuid"))
		s.respond(c, http.StatusOK, out, err)
	})
	g.PUT("/:uuid", func(c *gin.Context) {
		var in T
		if !s.bind(c, &in) {
			return
		}
		out, err := r.update(c.Request.Context(), c.Param("uuid"), in)
		s.respond(c, http.StatusOK, out, err)
	})
	g.DELETE("/:uuid", func(c *gin.Context) {
		if err := s.Playbill.Delete(c.Request.Context(), r.kind, c.Param("uuid")); err != nil {
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperror.Error{
			Kind:    apperror.KindValidation,
			Message: "Invalid request body",
		}})
		return false
	}
	return true
}

func (s *Server) respond(c *gin.Context, status int, out any, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, out)
}

// fail renders err as {"error": {...}} with the status its kind maps to.
func (s *Server) fail(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "internal", "message": "Internal server error"}})
}
