package kvstore

import (
	"context"
	"errors"
)

// Store magasin clé-valeur: chaque clé porte une collection JSON entière
type Store interface {
	// Get renvoie found=false si la clé n'existe pas
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Apply écrit un lot de remplacements en une fois (cascades)
	Apply(ctx context.Context, writes []Write) error
	Ping(ctx context.Context) error
}

// Write remplacement d'une clé; Value nil supprime la clé
type Write struct {
	Key   string
	Value []byte
}

// Put écriture d'une valeur
func Put(key string, value []byte) Write {
	return Write{Key: key, Value: value}
}

// Remove suppression d'une clé
func Remove(key string) Write {
	return Write{Key: key}
}

// IsDelete vrai si l'écriture supprime la clé
func (w Write) IsDelete() bool {
	return w.Value == nil
}

var (
	ErrEmptyKey = errors.New("clé vide")
	ErrClosed   = errors.New("magasin fermé")
)

// ValidateWrites refuse un lot contenant une clé vide
func ValidateWrites(writes []Write) error {
	for _, w := range writes {
		if w.Key == "" {
			return ErrEmptyKey
		}
	}
	return nil
}

// Compact ne garde que la dernière écriture de chaque clé, dans l'ordre de première apparition
func Compact(writes []Write) []Write {
	pos := make(map[string]int, len(writes))
	out := make([]Write, 0, len(writes))
	for _, w := range writes {
		if i, ok := pos[w.Key]; ok {
			out[i] = w
			continue
		}
		pos[w.Key] = len(out)
		out = append(out, w)
	}
	return out
}
