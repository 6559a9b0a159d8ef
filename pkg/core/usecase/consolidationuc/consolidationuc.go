// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package consolidationuc contains the consolidation engine use cases.
// A consolidation voyage (LTL shipment) groups planned shipments into
// one transport leg. Its consolidated weight and volume are derived
// values: after every membership change they are recomputed from the
// cargo of the freshly reloaded members, in the same transaction which
// changed the membership, and never adjusted incrementally.
//
// Membership changes lock the voyage row first and then the member
// shipment rows (ordered by id), so concurrent changes of one voyage
// are serialized and a shipment can never join two voyages.
package consolidationuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// UseCase represents the consolidation use cases.
type UseCase struct {
	pool        repo.Pool
	ltlrp       repo.Consolidations
	shipmentsrp repo.Shipments
	outboxrp    repo.Outbox

	maxMembers int
}

// New instantiates a consolidation use case.
func New(
	p repo.Pool,
	l repo.Consolidations, s repo.Shipments, o repo.Outbox,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, ltlrp: l, shipmentsrp: s, outboxrp: o}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.maxMembers == 0 {
		uc.maxMembers = 50
	}
	return uc, nil
}

// CreateParams are the inputs of a voyage creation.
type CreateParams struct {
	VoyageCode  string
	Departure   time.Time
	Arrival     time.Time
	ShipmentIDs []uuid.UUID
}

// Create creates a voyage in the consolidating status with the given
// initial members and computes its aggregates. All shipments must
// exist, be planned, and belong to no other voyage.
func (uc *UseCase) Create(
	ctx context.Context, p CreateParams,
) (l *model.LtlShipment, err error) {
	code := strings.TrimSpace(p.VoyageCode)
	if code == "" {
		return nil, cerr.Validation(errors.New("voyage code is empty"))
	}
	w := model.Window{Start: p.Departure, End: p.Arrival}
	if err = w.Validate(); err != nil {
		return nil, cerr.Validation(fmt.Errorf("departure/arrival: %w", err))
	}
	ids := dedup(p.ShipmentIDs)
	if len(ids) > uc.maxMembers {
		return nil, cerr.Validationf(
			"%d shipments exceed the limit of %d", len(ids), uc.maxMembers,
		)
	}
	now := time.Now().UTC()
	l = &model.LtlShipment{
		ID:         uuid.New(),
		VoyageCode: code,
		Status:     model.LtlConsolidating,
		Departure:  p.Departure,
		Arrival:    p.Arrival,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			if err := uc.ltlrp.Tx(tx).Create(ctx, l); err != nil {
				return fmt.Errorf("creating voyage: %w", err)
			}
			events := []*model.Event{model.NewEvent(
				model.EventLtlCreated, l.ID,
				"", model.LtlConsolidating.String(),
			).With("voyage_code", code)}
			locked, err := uc.lock(ctx, tx, ids)
			if err != nil {
				return err
			}
			ev, err := uc.join(ctx, tx, l.ID, pick(locked, ids))
			if err != nil {
				return err
			}
			events = append(events, ev...)
			if _, err := uc.recompute(ctx, tx, l.ID); err != nil {
				return err
			}
			if err := uc.outboxrp.Tx(tx).Append(ctx, events...); err != nil {
				return fmt.Errorf("recording events: %w", err)
			}
			l, err = uc.ltlrp.Tx(tx).Get(ctx, l.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "voyage is created",
		log.UUID("ltl", l.ID),
		slog.String("voyage_code", l.VoyageCode),
		log.UUIDs("members", l.MemberIDs),
		log.Decimal("weight", l.ConsolidatedWeightKg),
		log.Decimal("volume", l.ConsolidatedVolumeM3),
	)
	return l, nil
}

// UpdateMembers adds and removes shipments of the id voyage and then
// recomputes its aggregates. The voyage must be consolidating.
// Added shipments must be planned and belong to no other voyage,
// while removed shipments must belong to this voyage. Adding a current
// member or removing a non-member which is not linked elsewhere is an
// error, so callers notice stale views.
func (uc *UseCase) UpdateMembers(
	ctx context.Context, id uuid.UUID, add, remove []uuid.UUID,
) (l *model.LtlShipment, err error) {
	add, remove = dedup(add), dedup(remove)
	if len(add) == 0 && len(remove) == 0 {
		return nil, cerr.Validation(errors.New("no members to change"))
	}
	for _, r := range remove {
		for _, a := range add {
			if a == r {
				return nil, cerr.Validationf(
					"shipment %s is both added and removed", a,
				)
			}
		}
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			lq := uc.ltlrp.Tx(tx)
			cur, err := lq.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading voyage: %w", err)
			}
			if cur.Status != model.LtlConsolidating {
				return cerr.Conflictf(
					"voyage %s is %s and its members may not change",
					id, cur.Status,
				)
			}
			locked, err := uc.lock(ctx, tx, append(remove, add...))
			if err != nil {
				return err
			}
			events, err := uc.leave(ctx, tx, id, pick(locked, remove))
			if err != nil {
				return err
			}
			ev, err := uc.join(ctx, tx, id, pick(locked, add))
			if err != nil {
				return err
			}
			events = append(events, ev...)
			n, err := uc.recompute(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > uc.maxMembers {
				return cerr.Conflictf(
					"voyage %s would have %d shipments (limit is %d)",
					id, n, uc.maxMembers,
				)
			}
			events = append(events, model.NewEvent(
				model.EventLtlMembersChanged, id, "", "",
			).With("added", fmt.Sprint(len(add))).
				With("removed", fmt.Sprint(len(remove))))
			if err := uc.outboxrp.Tx(tx).Append(ctx, events...); err != nil {
				return fmt.Errorf("recording events: %w", err)
			}
			l, err = lq.Get(ctx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "voyage members are changed",
		log.UUID("ltl", id),
		log.UUIDs("added", add),
		log.UUIDs("removed", remove),
		log.Decimal("weight", l.ConsolidatedWeightKg),
		log.Decimal("volume", l.ConsolidatedVolumeM3),
	)
	return l, nil
}

// lock locks all ids shipments at once, so concurrent membership
// changes of different voyages acquire their row locks in one order.
func (uc *UseCase) lock(
	ctx context.Context, tx repo.Tx, ids []uuid.UUID,
) (map[uuid.UUID]model.Shipment, error) {
	m := make(map[uuid.UUID]model.Shipment, len(ids))
	if len(ids) == 0 {
		return m, nil
	}
	ss, err := uc.shipmentsrp.Tx(tx).LockMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading shipments: %w", err)
	}
	for _, s := range ss {
		m[s.ID] = s
	}
	return m, nil
}

func pick(m map[uuid.UUID]model.Shipment, ids []uuid.UUID) []model.Shipment {
	ss := make([]model.Shipment, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, m[id])
	}
	return ss
}

func shipmentIDs(ss []model.Shipment) []uuid.UUID {
	out := make([]uuid.UUID, len(ss))
	for i := range ss {
		out[i] = ss[i].ID
	}
	return out
}

// join links the locked ss shipments to the ltlID voyage.
func (uc *UseCase) join(
	ctx context.Context, tx repo.Tx, ltlID uuid.UUID, ss []model.Shipment,
) ([]*model.Event, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	events := make([]*model.Event, 0, len(ss))
	for _, s := range ss {
		switch {
		case s.LtlShipmentID != nil && *s.LtlShipmentID == ltlID:
			return nil, cerr.Conflictf(
				"shipment %s is already a member of voyage %s",
				s.ID, ltlID,
			)
		case s.LtlShipmentID != nil:
			return nil, cerr.Conflictf(
				"shipment %s belongs to voyage %s",
				s.ID, *s.LtlShipmentID,
			)
		case !s.Status.CanTransitionTo(model.ShipmentConsolidated):
			return nil, cerr.InvalidTransition(&model.TransitionError{
				Entity: "shipment " + s.ID.String(),
				From:   s.Status.String(),
				To:     model.ShipmentConsolidated.String(),
			})
		}
		events = append(events, model.NewEvent(
			model.EventShipmentStatusChanged, s.ID,
			s.Status.String(), model.ShipmentConsolidated.String(),
		).With("ltl_id", ltlID.String()))
	}
	if err := uc.shipmentsrp.Tx(tx).Link(ctx, shipmentIDs(ss), ltlID); err != nil {
		return nil, fmt.Errorf("linking shipments: %w", err)
	}
	return events, nil
}

// leave unlinks the locked ss shipments from the ltlID voyage.
func (uc *UseCase) leave(
	ctx context.Context, tx repo.Tx, ltlID uuid.UUID, ss []model.Shipment,
) ([]*model.Event, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	var events []*model.Event
	for _, s := range ss {
		if s.LtlShipmentID == nil || *s.LtlShipmentID != ltlID {
			return nil, cerr.Conflictf(
				"shipment %s is not a member of voyage %s", s.ID, ltlID,
			)
		}
		switch s.Status {
		case model.ShipmentConsolidated:
			events = append(events, model.NewEvent(
				model.EventShipmentStatusChanged, s.ID,
				s.Status.String(), model.ShipmentPlanned.String(),
			))
		case model.ShipmentCancelled:
		default:
			return nil, cerr.InvalidTransition(fmt.Errorf(
				"shipment %s is %s and may not leave its voyage",
				s.ID, s.Status,
			))
		}
	}
	if err := uc.shipmentsrp.Tx(tx).Unlink(ctx, shipmentIDs(ss)); err != nil {
		return nil, fmt.Errorf("unlinking shipments: %w", err)
	}
	return events, nil
}

// recompute reloads the members of the ltlID voyage and stores their
// aggregate load. It returns the number of members.
func (uc *UseCase) recompute(
	ctx context.Context, tx repo.Tx, ltlID uuid.UUID,
) (int, error) {
	lq := uc.ltlrp.Tx(tx)
	members, err := lq.Members(ctx, ltlID)
	if err != nil {
		return 0, fmt.Errorf("reloading members: %w", err)
	}
	if err := lq.SaveAggregates(ctx, ltlID, model.Consolidate(members)); err != nil {
		return 0, fmt.Errorf("saving aggregates: %w", err)
	}
	return len(members), nil
}

// UpdateStatus moves the id voyage to the next status following the
// consolidating -> in_transit -> completed path, or cancels it while
// it is not terminal. Departure and arrival do not change the member
// shipments, since their statuses follow their own lifecycle. When the
// voyage is cancelled, its consolidated members are unlinked and go
// back to planned, so they may join another voyage. Members which are
// already in transit or beyond stay linked as the voyage history.
func (uc *UseCase) UpdateStatus(
	ctx context.Context, id uuid.UUID, next model.LtlStatus,
) (l *model.LtlShipment, err error) {
	if err = next.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	var prev model.LtlStatus
	var released []uuid.UUID
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			lq := uc.ltlrp.Tx(tx)
			l, err = lq.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading voyage: %w", err)
			}
			prev = l.Status
			if !prev.CanTransitionTo(next) {
				return cerr.InvalidTransition(&model.TransitionError{
					Entity: "voyage " + id.String(),
					From:   prev.String(),
					To:     next.String(),
				})
			}
			if err := lq.UpdateStatus(ctx, id, next); err != nil {
				return fmt.Errorf("updating voyage: %w", err)
			}
			events := []*model.Event{model.NewEvent(
				model.EventLtlStatusChanged, id,
				prev.String(), next.String(),
			)}
			if next == model.LtlCancelled {
				ev, err := uc.releaseMembers(ctx, tx, id, l.MemberIDs)
				if err != nil {
					return err
				}
				events = append(events, ev...)
				for _, e := range ev {
					released = append(released, e.EntityID)
				}
			}
			if err := uc.outboxrp.Tx(tx).Append(ctx, events...); err != nil {
				return fmt.Errorf("recording events: %w", err)
			}
			l, err = lq.Get(ctx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "voyage status is changed",
		log.UUID("ltl", id),
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.UUIDs("released", released),
	)
	return l, nil
}

// releaseMembers unlinks the consolidated shipments among ids from the
// cancelled ltlID voyage and recomputes its aggregates.
func (uc *UseCase) releaseMembers(
	ctx context.Context, tx repo.Tx, ltlID uuid.UUID, ids []uuid.UUID,
) ([]*model.Event, error) {
	locked, err := uc.lock(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	var back []model.Shipment
	for _, id := range ids {
		s := locked[id]
		if s.LtlShipmentID != nil && *s.LtlShipmentID == ltlID &&
			s.Status == model.ShipmentConsolidated {
			back = append(back, s)
		}
	}
	events, err := uc.leave(ctx, tx, ltlID, back)
	if err != nil {
		return nil, err
	}
	if _, err := uc.recompute(ctx, tx, ltlID); err != nil {
		return nil, err
	}
	return events, nil
}

// Get returns the id voyage with its member ids.
func (uc *UseCase) Get(
	ctx context.Context, id uuid.UUID,
) (l *model.LtlShipment, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		l, err = uc.ltlrp.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
