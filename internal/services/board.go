package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"boardroom/internal/domain"
)

type boardService struct {
	boardRepo      domain.BoardRepository
	gridRepo       domain.GridRepository
	hasher         domain.KeyHasher
	tokens         domain.TokenIssuer
	mailer         domain.Mailer
	baseURL        string
	sessionTTL     time.Duration
	contextTimeout time.Duration
}

func NewBoardService(boardRepo domain.BoardRepository,
	gridRepo domain.GridRepository,
	hasher domain.KeyHasher,
	tokens domain.TokenIssuer,
	mailer domain.Mailer,
	baseURL string,
	sessionTTL time.Duration,
	timeout time.Duration,
) domain.BoardService {
	return &boardService{
		boardRepo:      boardRepo,
		gridRepo:       gridRepo,
		hasher:         hasher,
		tokens:         tokens,
		mailer:         mailer,
		baseURL:        baseURL,
		sessionTTL:     sessionTTL,
		contextTimeout: timeout,
	}
}

const accessKeyLength = 20

var accessKeyAlphabet = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func generateAccessKey() (string, error) {
	b := make([]rune, accessKeyLength)
	max := big.NewInt(int64(len(accessKeyAlphabet)))
	for i := 0; i < accessKeyLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = accessKeyAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *boardService) CreateBoard(ctx context.Context, name string) (*domain.Board, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", domain.ErrInvalidOperation)
	}

	key, err := generateAccessKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate access key: %w", err)
	}
	hash, err := s.hasher.Hash(key)
	if err != nil {
		return nil, "", fmt.Errorf("hash access key: %w", err)
	}

	now := time.Now()
	board := domain.NewBoard(name, hash, now, now)
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, "", fmt.Errorf("create board: %w", err)
	}
	return board, key, nil
}

func (s *boardService) OpenSession(ctx context.Context, boardID, accessKey string) (*domain.BoardSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	if err := s.hasher.Compare(board.AccessKeyHash, accessKey); err != nil {
		return nil, domain.ErrUnauthorized
	}

	sessionID := uuid.NewString()
	token, err := s.tokens.Issue(board.ID, sessionID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &domain.BoardSession{
		BoardID:   board.ID,
		SessionID: sessionID,
		Token:     token,
	}, nil
}

func (s *boardService) InviteOperator(ctx context.Context, boardID, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get board: %w", err)
	}

	link := fmt.Sprintf("%s/boards/%s", s.baseURL, board.ID)
	subject := fmt.Sprintf("You have been invited to the board %q", board.Name)
	html := fmt.Sprintf(`<p>You have been invited to help arrange the schedule board <strong>%s</strong>.</p><p><a href="%s">Open the board</a> and ask the board owner for the access key.</p>`, board.Name, link)
	text := fmt.Sprintf("You have been invited to help arrange the schedule board %q.\nOpen %s and ask the board owner for the access key.", board.Name, link)
	if err := s.mailer.Send(email, subject, html, text); err != nil {
		return fmt.Errorf("send invitation: %w", err)
	}
	return nil
}

func (s *boardService) CreateRoom(ctx context.Context, boardID, name string, hasDisplay, hasWhiteboard bool) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidOperation)
	}
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}

	now := time.Now()
	room := domain.NewRoom(boardID, name, hasDisplay, hasWhiteboard, now, now)
	if err := s.gridRepo.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *boardService) CreateSlot(ctx context.Context, boardID string, startsAt, endsAt time.Time, highlighted bool) (*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("%w: slot must end after it starts", domain.ErrInvalidOperation)
	}
	if _, err := s.boardRepo.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	ordinal, err := s.gridRepo.NextSlotOrdinal(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("next slot ordinal: %w", err)
	}

	label := fmt.Sprintf("%s-%s", startsAt.Format("15:04"), endsAt.Format("15:04"))
	now := time.Now()
	slot := domain.NewSlot(boardID, label, startsAt, endsAt, ordinal, highlighted, now, now)
	if err := s.gridRepo.CreateSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

func (s *boardService) ListRooms(ctx context.Context, boardID string) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rooms, err := s.gridRepo.ListRoomsByBoardID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	return rooms, nil
}

func (s *boardService) ListSlots(ctx context.Context, boardID string) ([]*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slots, err := s.gridRepo.ListSlotsByBoardID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if slots == nil {
		slots = []*domain.Slot{}
	}
	return slots, nil
}

func (s *boardService) DeleteRoom(ctx context.Context, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.gridRepo.DeleteRoom(ctx, roomID)
}

func (s *boardService) DeleteSlot(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.gridRepo.DeleteSlot(ctx, slotID)
}
