package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/model"
)

// Apply performs one intent. It implements the dispatcher's Applier.
func (c *Controller) Apply(_ context.Context, in model.Intent) error {
	if in.Kind == model.KindRetry {
		if !c.Retry() {
			return fmt.Errorf("%w: nothing to retry", ErrUnsupportedIntent)
		}
		return nil
	}
	p, err := c.patchFor(in)
	if err != nil {
		return err
	}
	return c.Update(p)
}

// patchFor translates an intent into a filter patch.
func (c *Controller) patchFor(in model.Intent) (filter.Patch, error) {
	switch in.Kind {
	case model.KindDivision:
		d, ok := filter.ParseDivision(in.Value)
		if !ok {
			return filter.Patch{}, fmt.Errorf("%w: %q", filter.ErrUnknownDivision, in.Value)
		}
		return filter.Patch{Division: filter.Ptr(d.Code)}, nil
	case model.KindGender:
		return filter.Patch{Gender: filter.Ptr(in.Value)}, nil
	case model.KindView:
		return filter.Patch{View: filter.Ptr(filter.View(in.Value))}, nil
	case model.KindRegion:
		if in.Value == "" {
			return filter.Patch{ClearRegion: true}, nil
		}
		return filter.Patch{Region: filter.Ptr(in.Value)}, nil
	case model.KindConference:
		if in.Value == "" {
			return filter.Patch{ClearConference: true}, nil
		}
		return filter.Patch{Conference: filter.Ptr(in.Value)}, nil
	case model.KindSearch:
		return filter.Patch{Search: filter.Ptr(in.Value)}, nil
	case model.KindPage:
		n, err := strconv.Atoi(in.Value)
		if err != nil {
			return filter.Patch{}, fmt.Errorf("%w: page %q", filter.ErrInvalidOffset, in.Value)
		}
		return filter.Patch{Offset: filter.Ptr(c.View().Pager.OffsetOf(n))}, nil
	case model.KindNext:
		return filter.Patch{Offset: filter.Ptr(c.View().Pager.Next())}, nil
	case model.KindPrev:
		return filter.Patch{Offset: filter.Ptr(c.View().Pager.Prev())}, nil
	case model.KindHistorical:
		p := filter.Patch{Historical: filter.Ptr(true)}
		if in.Value != "" {
			p.SnapshotDate = filter.Ptr(in.Value)
		}
		return p, nil
	case model.KindSnapshot:
		return filter.Patch{Historical: filter.Ptr(true), SnapshotDate: filter.Ptr(in.Value)}, nil
	case model.KindLive:
		return filter.Patch{Historical: filter.Ptr(false)}, nil
	default:
		return filter.Patch{}, fmt.Errorf("%w: %s", ErrUnsupportedIntent, in.Kind)
	}
}
