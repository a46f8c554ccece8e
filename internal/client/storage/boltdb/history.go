package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/iudanet/shortify/internal/client/storage"
)

// AddLink сохраняет ссылку в локальной истории, ключ - короткий код
func (s *Storage) AddLink(ctx context.Context, link *storage.LinkRecord) error {
	if link == nil || link.ShortCode == "" {
		return fmt.Errorf("link record must have a short code")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketHistory)
		if bucket == nil {
			return fmt.Errorf("history bucket not found")
		}

		data, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("failed to marshal link record: %w", err)
		}
		return bucket.Put([]byte(link.ShortCode), data)
	})
}

// ListLinks returns the history, newest first
func (s *Storage) ListLinks(ctx context.Context) ([]*storage.LinkRecord, error) {
	var links []*storage.LinkRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketHistory)
		if bucket == nil {
			return fmt.Errorf("history bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var link storage.LinkRecord
			if err := json.Unmarshal(v, &link); err != nil {
				return fmt.Errorf("failed to unmarshal link %s: %w", k, err)
			}
			links = append(links, &link)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(links, func(a, b *storage.LinkRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return links, nil
}

// RemoveLink удаляет ссылку из истории; отсутствующий код не ошибка
func (s *Storage) RemoveLink(ctx context.Context, code string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketHistory)
		if bucket == nil {
			return fmt.Errorf("history bucket not found")
		}
		return bucket.Delete([]byte(code))
	})
}
