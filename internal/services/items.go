package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"boardroom/internal/domain"
)

type itemService struct {
	boardRepo      domain.BoardRepository
	gridRepo       domain.GridRepository
	itemRepo       domain.ItemRepository
	advisor        domain.PlacementAdvisor
	broadcaster    domain.Broadcaster
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewItemService(boardRepo domain.BoardRepository,
	gridRepo domain.GridRepository,
	itemRepo domain.ItemRepository,
	advisor domain.PlacementAdvisor,
	broadcaster domain.Broadcaster,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ItemService {
	return &itemService{
		boardRepo:      boardRepo,
		gridRepo:       gridRepo,
		itemRepo:       itemRepo,
		advisor:        advisor,
		broadcaster:    broadcaster,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// checkPlacement validates a target cell for an item with the given resource
// requirements: both axes must exist on the board, the room must carry the
// required capabilities (unless overridden), and the cell must be free.
// excludeItemID skips the conflict check against the item being moved.
func (s *itemService) checkPlacement(ctx context.Context, boardID string, needsDisplay, needsWhiteboard bool, cell domain.Cell, excludeItemID string, opts domain.PlaceOptions) error {
	room, err := s.gridRepo.GetRoomByID(ctx, cell.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get room: %w", err)
	}
	if room.BoardID != boardID {
		return fmt.Errorf("%w: room belongs to another board", domain.ErrInvalidOperation)
	}
	slot, err := s.gridRepo.GetSlotByID(ctx, cell.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get slot: %w", err)
	}
	if slot.BoardID != boardID {
		return fmt.Errorf("%w: slot belongs to another board", domain.ErrInvalidOperation)
	}
	if slot.Ordinal < 0 {
		// Placeholder slots are transaction-internal and never valid targets.
		return domain.ErrNotFound
	}

	if !opts.Override {
		var missing []string
		if needsDisplay && !room.HasDisplay {
			missing = append(missing, "display")
		}
		if needsWhiteboard && !room.HasWhiteboard {
			missing = append(missing, "whiteboard")
		}
		if len(missing) > 0 {
			return &domain.ResourceMismatchError{Missing: missing}
		}
	}

	occupant, err := s.itemRepo.GetByCell(ctx, cell.RoomID, cell.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("check cell occupancy: %w", err)
	}
	if occupant.ID != excludeItemID {
		return &domain.OccupiedSlotError{Conflicting: occupant}
	}
	return nil
}

// occupiedBy fills in the conflicting item after losing a constraint race.
// The pre-check and the insert are not atomic, so a concurrent writer may
// take the cell between them; the constraint is the arbiter and the winner
// is re-fetched to name it in the error.
func (s *itemService) occupiedBy(ctx context.Context, cell domain.Cell, err error) error {
	var occ *domain.OccupiedSlotError
	if !errors.As(err, &occ) {
		return err
	}
	if occ.Conflicting == nil {
		if winner, werr := s.itemRepo.GetByCell(ctx, cell.RoomID, cell.SlotID); werr == nil {
			occ = &domain.OccupiedSlotError{Conflicting: winner}
		}
	}
	return occ
}

// getBoardItem loads an item and verifies it belongs to the session's board.
// Items on other boards are indistinguishable from absent ones.
func (s *itemService) getBoardItem(ctx context.Context, boardID, itemID string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item.BoardID != boardID {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *itemService) CreateItem(ctx context.Context, boardID string, draft domain.ItemDraft, cell domain.Cell, opts domain.PlaceOptions, session string) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if draft.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidOperation)
	}
	if err := s.checkPlacement(ctx, boardID, draft.NeedsDisplay, draft.NeedsWhiteboard, cell, "", opts); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &domain.Item{
		BoardID:         boardID,
		Title:           draft.Title,
		Presenter:       draft.Presenter,
		NeedsDisplay:    draft.NeedsDisplay,
		NeedsWhiteboard: draft.NeedsWhiteboard,
		RoomID:          cell.RoomID,
		SlotID:          cell.SlotID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, s.occupiedBy(ctx, cell, err)
	}

	s.publish(ctx, boardID, domain.ChangeEvent{
		Type:          domain.ChangeCreated,
		ItemID:        item.ID,
		OriginSession: session,
		Snapshot:      item,
	})
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, boardID, itemID string, patch domain.ItemPatch, opts domain.PlaceOptions, session string) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	item, err := s.getBoardItem(ctx, boardID, itemID)
	if err != nil {
		return nil, err
	}

	if (patch.RoomID == nil) != (patch.SlotID == nil) {
		return nil, fmt.Errorf("%w: a move must target both a room and a slot", domain.ErrInvalidOperation)
	}

	placementChanged := patch.RoomID != nil
	resourcesChanged := patch.NeedsDisplay != nil || patch.NeedsWhiteboard != nil
	cell := item.Cell()
	if placementChanged {
		cell = domain.Cell{RoomID: *patch.RoomID, SlotID: *patch.SlotID}
	}
	if placementChanged || resourcesChanged {
		needsDisplay := item.NeedsDisplay
		if patch.NeedsDisplay != nil {
			needsDisplay = *patch.NeedsDisplay
		}
		needsWhiteboard := item.NeedsWhiteboard
		if patch.NeedsWhiteboard != nil {
			needsWhiteboard = *patch.NeedsWhiteboard
		}
		if err := s.checkPlacement(ctx, item.BoardID, needsDisplay, needsWhiteboard, cell, item.ID, opts); err != nil {
			return nil, err
		}
	}

	updated, err := s.itemRepo.Update(ctx, itemID, patch)
	if err != nil {
		return nil, s.occupiedBy(ctx, cell, err)
	}

	s.publish(ctx, updated.BoardID, domain.ChangeEvent{
		Type:          domain.ChangeUpdated,
		ItemID:        updated.ID,
		OriginSession: session,
		Snapshot:      updated,
	})
	return updated, nil
}

func (s *itemService) DeleteItem(ctx context.Context, boardID, itemID string, session string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	item, err := s.getBoardItem(ctx, boardID, itemID)
	if err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}

	s.publish(ctx, item.BoardID, domain.ChangeEvent{
		Type:          domain.ChangeDeleted,
		ItemID:        itemID,
		OriginSession: session,
	})
	return nil
}

func (s *itemService) SwapItems(ctx context.Context, boardID, itemAID, itemBID string, session string) (*domain.Item, *domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if itemAID == itemBID {
		return nil, nil, fmt.Errorf("%w: cannot swap an item with itself", domain.ErrInvalidOperation)
	}
	for _, id := range []string{itemAID, itemBID} {
		if _, err := s.getBoardItem(ctx, boardID, id); err != nil {
			return nil, nil, err
		}
	}

	a, b, err := s.itemRepo.Swap(ctx, itemAID, itemBID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("swap items: %w", err)
	}

	s.publish(ctx, a.BoardID, domain.ChangeEvent{
		Type:          domain.ChangeSwapped,
		ItemIDs:       []string{a.ID, b.ID},
		OriginSession: session,
	})
	return a, b, nil
}

func (s *itemService) Grid(ctx context.Context, boardID string) (*domain.Grid, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}

	rooms, err := s.gridRepo.ListRoomsByBoardID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	slots, err := s.gridRepo.ListSlotsByBoardID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if slots == nil {
		slots = []*domain.Slot{}
	}
	items, err := s.itemRepo.ListByBoardID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []*domain.Item{}
	}

	return &domain.Grid{Rooms: rooms, Slots: slots, Items: items}, nil
}

func (s *itemService) SuggestPlacement(ctx context.Context, boardID string, draft domain.ItemDraft) (domain.Cell, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	grid, err := s.Grid(ctx, boardID)
	if err != nil {
		return domain.Cell{}, err
	}

	cell, err := s.advisor.Suggest(ctx, domain.PlacementRequest{
		BoardID:         boardID,
		NeedsDisplay:    draft.NeedsDisplay,
		NeedsWhiteboard: draft.NeedsWhiteboard,
		Rooms:           grid.Rooms,
		Slots:           grid.Slots,
		Items:           grid.Items,
	})
	if err != nil {
		return domain.Cell{}, fmt.Errorf("advisor suggest: %w", err)
	}

	// A suggestion is just another drop target: it goes through the same
	// validation as a manual placement before anyone commits to it.
	if err := s.checkPlacement(ctx, boardID, draft.NeedsDisplay, draft.NeedsWhiteboard, cell, "", domain.PlaceOptions{}); err != nil {
		return domain.Cell{}, err
	}
	return cell, nil
}

func (s *itemService) publish(ctx context.Context, boardID string, ev domain.ChangeEvent) {
	if s.broadcaster == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := s.broadcaster.Publish(ctx, boardID, ev); err != nil {
		// Best effort: a missed event only delays freshness until the next
		// full re-fetch, so the mutation itself stays successful.
		s.logger.WarnContext(ctx, "broadcast publish failed", "board_id", boardID, "type", ev.Type, "err", err)
	}
}
