package gormstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradebook/internal/store"
	storemodel "tradebook/internal/store/model"
	"tradebook/internal/trade"

	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

const defaultListLimit = 50

type bookedMessageModel = storemodel.BookedMessageModel

// GormStore keeps booked messages in SQLite through gorm.
type GormStore struct {
	db   *gorm.DB
	path string
}

var _ store.MessageStore = (*GormStore)(nil)

// NewGormStore opens (creating if needed) the SQLite database at path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, &trade.IOError{Op: "mkdir", Destination: filepath.Dir(path), Err: err}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, &trade.IOError{Op: "open", Destination: path, Err: err}
	}
	s, err := NewGormStoreFromDB(db)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// NewGormStoreFromDB migrates the schema on an existing connection.
func NewGormStoreFromDB(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm store: db cannot be nil")
	}
	if err := db.AutoMigrate(&bookedMessageModel{}); err != nil {
		return nil, fmt.Errorf("gorm store: migrate: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		// SQLite + WAL: a couple of connections let HTTP reads overlap writes.
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Write stores a serialized message. The identifying columns are read from
// the message itself.
func (s *GormStore) Write(ctx context.Context, ref string, data []byte) error {
	dest := s.destination()
	if !gjson.ValidBytes(data) {
		return &trade.IOError{Op: "insert", Destination: dest, Err: errors.New("message is not valid json")}
	}
	var body bytes.Buffer
	if err := json.Compact(&body, data); err != nil {
		return &trade.IOError{Op: "insert", Destination: dest, Err: err}
	}
	fields := gjson.GetManyBytes(data,
		"tradeHeader.partyTradeIdentifier.tradeId",
		"messageHeader.messageType",
		"messageHeader.senderCompID",
		"messageHeader.targetCompID",
		"messageHeader.sendingTime",
		"messageFooter.checksum",
	)
	row := bookedMessageModel{
		TradeID:       fields[0].String(),
		MessageType:   fields[1].String(),
		SenderCompID:  fields[2].String(),
		TargetCompID:  fields[3].String(),
		SendingTime:   fields[4].String(),
		Checksum:      fields[5].String(),
		Ref:           ref,
		Body:          datatypes.JSON(body.Bytes()),
		CreatedAtUnix: time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return &trade.IOError{Op: "insert", Destination: dest, Err: err}
	}
	return nil
}

func (s *GormStore) ListByTradeID(ctx context.Context, tradeID string, limit int) ([]storemodel.BookedMessageModel, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var rows []bookedMessageModel
	err := s.db.WithContext(ctx).
		Where("trade_id = ?", strings.TrimSpace(tradeID)).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, &trade.IOError{Op: "query", Destination: s.destination(), Err: err}
	}
	return rows, nil
}

func (s *GormStore) FindByChecksum(ctx context.Context, checksum string) (*storemodel.BookedMessageModel, error) {
	var row bookedMessageModel
	err := s.db.WithContext(ctx).Where("checksum = ?", strings.TrimSpace(checksum)).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &trade.IOError{Op: "query", Destination: s.destination(), Err: err}
	}
	return &row, nil
}

func (s *GormStore) destination() string {
	if s.path == "" {
		return "sqlite:booked_messages"
	}
	return "sqlite:" + s.path
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
