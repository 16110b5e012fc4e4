package redis

import (
	"context"

	"github.com/veridian-kb/searchd/internal/db"
)

// SAdd adds members to a set.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Sadd().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSAdd, Err: err}
	}
	return nil
}

// SRem removes members from a set.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Srem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSRem, Err: err}
	}
	return nil
}

// SMIsMember reports membership for each given member, preserving order.
func (s *Store) SMIsMember(ctx context.Context, key string, members []string) ([]bool, error) {
	if len(members) == 0 {
		return nil, nil
	}
	cmd := s.b().Smismember().Key(key).Member(members...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMIsMember, Err: err}
	}

	out := make([]bool, len(raw))
	for i, msg := range raw {
		n, err := msg.AsInt64()
		if err != nil {
			return nil, &db.Error{Op: db.OpSMIsMember, Err: err}
		}
		out[i] = n == 1
	}
	return out, nil
}
