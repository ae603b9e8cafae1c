// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package api defines the HTTP routes of the server. Handlers translate
// requests into calls on services.ExampleService and errors into
// ErrorResponse bodies.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
)

// Options configures NewRouter.
type Options struct {
	ServiceName       string  // Name reported by the otelgin spans.
	RequestsPerSecond float64 // Sustained request rate; zero or less disables limiting.
	RequestBurst      int     // Bucket size of the limiter.
}

// NewRouter returns the engine serving /api/v1.
func NewRouter(service *services.ExampleService, options Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(options.ServiceName))
	r.Use(cors.Default())
	if options.RequestsPerSecond > 0 {
		burst := options.RequestBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)))
	}

	apiV1 := r.Group("/api/v1")
	{
		DatasetRouter(apiV1, service)
		ExampleRouter(apiV1, service)
	}
	return r
}

// DatasetRouter sets up the per-split routes.
func DatasetRouter(r *gin.RouterGroup, service *services.ExampleService) {
	datasets := r.Group("/datasets/:split")
	{
		datasets.GET("/stats", func(c *gin.Context) {
			stats, err := service.Stats(c.Request.Context(), c.Param("split"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, stats)
		})

		datasets.GET("/examples/:index", func(c *gin.Context) {
			index, err := strconv.Atoi(c.Param("index"))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "index must be an integer"})
				return
			}
			seed, ok := seedParam(c)
			if !ok {
				return
			}
			example, err := service.Prepare(c.Request.Context(), c.Param("split"), index, seed)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, example)
		})

		datasets.POST("/batches", func(c *gin.Context) {
			request := &model.BatchRequest{}
			if err := c.ShouldBindJSON(request); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			result, err := service.PrepareBatch(c.Request.Context(), c.Param("split"), request)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}
}

// ExampleRouter sets up the dataset-free routes.
func ExampleRouter(r *gin.RouterGroup, service *services.ExampleService) {
	examples := r.Group("/examples")
	{
		examples.POST("/preview", func(c *gin.Context) {
			request := &model.PreviewRequest{}
			if err := c.ShouldBindJSON(request); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			example, err := service.Preview(c.Request.Context(), request)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, example)
		})
	}
}

// seedParam reads the optional seed query parameter. It writes a 400 and
// returns false when the value is not an unsigned integer.
func seedParam(c *gin.Context) (*uint64, bool) {
	raw, present := c.GetQuery("seed")
	if !present {
		return nil, true
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "seed must be an unsigned integer"})
		return nil, false
	}
	return &seed, true
}
