package conversion_engine

import "context"

type Engine interface {
	Start(ctx context.Context, numWorkers int)
	Submit(ctx context.Context, s *Session, up Upload) error
	Convert(ctx context.Context, s *Session, up Upload) error
}

var _ Engine = (*Converter)(nil)
