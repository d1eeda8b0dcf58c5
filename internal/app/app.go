package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"vsh/internal/config"
	"vsh/internal/database"
	"vsh/internal/encryption"
	"vsh/internal/fetch"
	"vsh/internal/model"
	"vsh/internal/snapshot"
	"vsh/internal/vault"
	"vsh/internal/vsh"
)

// ErrNoVault is returned when the config lists no vault.
var ErrNoVault = errors.New("no vaults configured")

// VshApp is the application layer between the CLI and the shell.
// It constructs all dependencies from config, runs shell sessions on them,
// manages stored snapshots and closes everything on Close.
type VshApp struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	vault     vsh.Vault
	encryptor vsh.Encryptor
	fetcher   *fetch.RestyFetcher
	logger    vsh.Logger
	clock     vsh.Clock
	idgen     vsh.IDGenerator
	op        *Operation
	logFile   *os.File
}

// NewVshApp creates a fully wired VshApp from the given config.
// operation identifies the CLI command being run (e.g. "shell", "export").
// The caller must call Close when done.
func NewVshApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*VshApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Vaults) == 0 {
		return nil, ErrNoVault
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database, cfg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}
	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir, cfg.SessionID, cfg.LogLevel)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	clock := vsh.RealClock{}
	op := NewOperation(operation, parameters, clock.Now())
	adapter.Debug("operation started", "operation", operation, "parameters", parameters)

	return &VshApp{
		cfg:       cfg,
		store:     store,
		vault:     v,
		encryptor: enc,
		fetcher:   fetch.NewRestyFetcher(cfg.Fetch, adapter),
		logger:    adapter,
		clock:     clock,
		idgen:     vsh.UUIDGenerator{},
		op:        op,
		logFile:   logFile,
	}, nil
}

// NewSession creates a shell session on the app's store and fetcher,
// writing to out and errOut.
func (a *VshApp) NewSession(out, errOut io.Writer) *vsh.Session {
	s := vsh.NewSession(vsh.Config{
		Separator:    a.cfg.Shell.Separator,
		Prompt:       a.cfg.Shell.Prompt,
		HistoryLimit: a.cfg.Shell.HistoryLimit,
	}, a.store, a.fetcher, a.logger, a.clock, a.idgen)
	s.SetOutput(out, errOut)
	return s
}

// RunShell runs a session reading lines from in until EOF or exit.
func (a *VshApp) RunShell(ctx context.Context, in io.Reader, out, errOut io.Writer, interactive bool) error {
	return a.op.Record(a.NewSession(out, errOut).Run(ctx, in, interactive))
}

// Exec runs lines in one session and stops at the first failing line.
func (a *VshApp) Exec(ctx context.Context, lines []string, out, errOut io.Writer) error {
	s := a.NewSession(out, errOut)
	for _, line := range lines {
		if err := s.Execute(ctx, line); err != nil {
			return a.op.Record(err)
		}
		if s.Exited() {
			break
		}
	}
	return nil
}

// ListSnapshots returns the stored snapshots, newest first.
func (a *VshApp) ListSnapshots() ([]*model.SnapshotInfo, error) {
	infos, err := a.store.List()
	return infos, a.op.Record(err)
}

// ShowSnapshot returns the stored snapshot named name.
func (a *VshApp) ShowSnapshot(name string) (*model.Snapshot, error) {
	snap, err := a.load(name)
	return snap, a.op.Record(err)
}

// DeleteSnapshot removes the stored snapshot named name.
func (a *VshApp) DeleteSnapshot(name string) error {
	if err := a.store.Delete(name); err != nil {
		return a.op.Record(err)
	}
	a.logger.Info("snapshot deleted", "name", name)
	return nil
}

// ExportKey is the vault key an exported snapshot is stored under.
func ExportKey(name string) string {
	return "snapshots/" + name + ".toml.age"
}

// ExportSnapshot encrypts the stored snapshot named name to the configured
// public key and puts it in the vault. It returns the vault key.
func (a *VshApp) ExportSnapshot(name string) (string, error) {
	key, err := a.export(name)
	return key, a.op.Record(err)
}

func (a *VshApp) export(name string) (string, error) {
	snap, err := a.load(name)
	if err != nil {
		return "", err
	}
	data, err := snapshot.Marshal(snap)
	if err != nil {
		return "", err
	}

	var ciphertext bytes.Buffer
	if err := a.encryptor.Encrypt(bytes.NewReader(data), &ciphertext); err != nil {
		return "", fmt.Errorf("encrypting snapshot %s: %w", name, err)
	}
	if err := a.vault.ValidateSetup(); err != nil {
		return "", fmt.Errorf("vault %s: %w", a.cfg.Vaults[0].Name, err)
	}

	key := ExportKey(name)
	size := int64(ciphertext.Len())
	if err := a.vault.Put(key, &ciphertext, size); err != nil {
		return "", fmt.Errorf("uploading snapshot %s: %w", name, err)
	}
	a.logger.Info("snapshot exported", "name", name, "key", key, "bytes", size)
	return key, nil
}

// ImportSnapshot fetches the export of name from the vault, decrypts it
// with the private key unlocked by passphrase and stores it, replacing a
// stored snapshot of the same name. The tree is rebuilt before storing, so
// a tampered export is rejected.
func (a *VshApp) ImportSnapshot(name, passphrase string) (*model.Snapshot, error) {
	snap, err := a.importSnapshot(name, passphrase)
	return snap, a.op.Record(err)
}

func (a *VshApp) importSnapshot(name, passphrase string) (*model.Snapshot, error) {
	key := ExportKey(name)
	var ciphertext bytes.Buffer
	if err := a.vault.Get(key, &ciphertext); err != nil {
		return nil, fmt.Errorf("downloading snapshot %s: %w", name, err)
	}

	dec, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	var plaintext bytes.Buffer
	if err := dec.Decrypt(&ciphertext, &plaintext); err != nil {
		return nil, fmt.Errorf("decrypting snapshot %s: %w", name, err)
	}

	snap, err := snapshot.Unmarshal(plaintext.Bytes())
	if err != nil {
		return nil, err
	}
	if snap.Name != name {
		return nil, fmt.Errorf("export %s holds snapshot %q", key, snap.Name)
	}
	if _, err := snapshot.Restore(snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", name, err)
	}
	if err := a.store.Save(snap); err != nil {
		return nil, err
	}
	a.logger.Info("snapshot imported", "name", name, "id", snap.ID, "nodes", len(snap.Nodes))
	return snap, nil
}

// SetupKeys generates the export key pair, protecting the private key
// with passphrase.
func (a *VshApp) SetupKeys(passphrase string) error {
	if err := a.encryptor.Setup(passphrase); err != nil {
		return a.op.Record(err)
	}
	a.logger.Info("encryption keys created")
	return nil
}

// KeysConfigured reports whether the export key pair exists.
func (a *VshApp) KeysConfigured() bool {
	return a.encryptor.IsConfigured()
}

func (a *VshApp) load(name string) (*model.Snapshot, error) {
	snap, err := a.store.Load(name)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%s: %w", name, vsh.ErrSnapshotNotFound)
	}
	return snap, nil
}

// Close logs how the operation ended and closes all resources.
func (a *VshApp) Close() error {
	logf := a.logger.Info
	if a.op.Failed() {
		logf = a.logger.Warn
	}
	logf("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", a.clock.Now().Sub(a.op.Started))

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing snapshot store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
