package commands

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Download(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) InstallPlugin(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockInstaller) UninstallPlugin(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockInstaller) IsInstalled(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstaller) InstalledPlugins(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockStartupScript struct {
	mock.Mock
}

func (m *MockStartupScript) Ensure(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStartupScript) EnabledPlugins(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStartupScript) EnablePlugin(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStartupScript) DisablePlugin(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
