package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ListPosts godoc
// @Summary List posts
// @Description Returns every post in the collection
// @Tags posts
// @Produce json
// @Success 200 {array} main.Post
// @Router /posts [get]
func handleListPosts(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := store.All(c.Request.Context())
		if err != nil {
			log.Errorf("list posts failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
			return
		}
		if docs == nil {
			docs = []Document{}
		}
		c.JSON(http.StatusOK, docs)
	}
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post id"
// @Success 200 {object} main.Post
// @Failure 404 {object} main.errorResponse
// @Router /posts/{id} [get]
func handleGetPost(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		doc, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		if err != nil {
			log.Errorf("get post %d failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// CreatePost godoc
// @Summary Create a post
// @Description Stores the record validated and normalized by the pipeline
// @Tags posts
// @Accept json
// @Produce json
// @Param post body main.Post true "Post"
// @Security BearerAuth
// @Success 201 {object} main.Post
// @Failure 400 {object} main.errorResponse
// @Failure 401 {object} main.errorResponse
// @Failure 409 {object} main.errorResponse
// @Failure 422 {object} main.errorResponse
// @Router /posts [post]
func handleCreatePost(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := pipelineState(c)
		if st == nil || st.body == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := store.Insert(c.Request.Context(), st.body); err != nil {
			log.Errorf("create post failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
			return
		}
		c.JSON(http.StatusCreated, st.body)
	}
}

// UpdatePost godoc
// @Summary Replace a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post id"
// @Param post body main.Post true "Post"
// @Security BearerAuth
// @Success 200 {object} main.Post
// @Failure 400 {object} main.errorResponse
// @Failure 401 {object} main.errorResponse
// @Failure 404 {object} main.errorResponse
// @Router /posts/{id} [put]
func handleUpdatePost(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := pipelineState(c)
		if st == nil || !st.hasPathID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path id must be an integer"})
			return
		}
		doc, err := store.Replace(c.Request.Context(), st.pathID, st.body)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		if err != nil {
			log.Errorf("replace post %d failed: %v", st.pathID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// PatchPost godoc
// @Summary Patch a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post id"
// @Param fields body object true "Fields to merge"
// @Security BearerAuth
// @Success 200 {object} main.Post
// @Failure 400 {object} main.errorResponse
// @Failure 401 {object} main.errorResponse
// @Failure 404 {object} main.errorResponse
// @Router /posts/{id} [patch]
func handlePatchPost(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := pipelineState(c)
		if st == nil || !st.hasPathID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path id must be an integer"})
			return
		}
		doc, err := store.Patch(c.Request.Context(), st.pathID, st.body)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		if err != nil {
			log.Errorf("patch post %d failed: %v", st.pathID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post id"
// @Security BearerAuth
// @Success 200 {object} object
// @Failure 401 {object} main.errorResponse
// @Failure 404 {object} main.errorResponse
// @Router /posts/{id} [delete]
func handleDeletePost(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		err = store.Delete(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		if err != nil {
			log.Errorf("delete post %d failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}
