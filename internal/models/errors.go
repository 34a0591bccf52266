package models

import "errors"

var (
	// ErrUpstreamUnavailable marks transport failures reaching the news provider
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamBadResponse marks non-2xx or undecodable upstream responses
	ErrUpstreamBadResponse = errors.New("upstream bad response")
	// ErrValidation marks missing or malformed request input
	ErrValidation = errors.New("validation error")
	// ErrRecommendationService marks failures of the recommendation endpoint
	ErrRecommendationService = errors.New("recommendation service failure")
)
