package api

import "github.com/JaimeStill/medora/internal/consultations"

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Consultations consultations.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Consultations: consultations.New(
			runtime.Database.Connection(),
			runtime.Pipeline,
			runtime.Storage,
			runtime.Workers,
			runtime.Generator.Name(),
			runtime.Logger,
			runtime.Pagination,
		),
	}
}
