package cmd

import (
	"sync"

	"github.com/bigincgenesis/bigcli/internal/wallet"
)

// lazyKeyStore opens the OS keychain on first use, so commands that never
// touch a private key never trigger a keychain prompt.
type lazyKeyStore struct {
	dir  string
	once sync.Once
	ks   wallet.KeyStore
	err  error
}

func (l *lazyKeyStore) open() (wallet.KeyStore, error) {
	l.once.Do(func() {
		ks, err := wallet.OpenKeystore(l.dir)
		if err != nil {
			l.err = err
			return
		}
		l.ks = ks
	})
	return l.ks, l.err
}

func (l *lazyKeyStore) Store(name, hexKey string) (string, error) {
	ks, err := l.open()
	if err != nil {
		return "", err
	}
	return ks.Store(name, hexKey)
}

func (l *lazyKeyStore) Retrieve(ref string) (string, error) {
	ks, err := l.open()
	if err != nil {
		return "", err
	}
	return ks.Retrieve(ref)
}

func (l *lazyKeyStore) Delete(ref string) error {
	ks, err := l.open()
	if err != nil {
		return err
	}
	return ks.Delete(ref)
}
