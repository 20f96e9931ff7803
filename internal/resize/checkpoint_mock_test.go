package resize

import (
	"errors"
	"testing"

	gomock "github.com/golang/mock/gomock"

	"github.com/oetiker/fat32expander/internal/device"
)

func TestWriteCheckpointPropagatesIOFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	md := device.NewMockDevice(ctrl)
	md.EXPECT().LengthSectors().Return(uint64(8), nil)
	md.EXPECT().SectorSize().Return(uint32(512))
	md.EXPECT().WriteSectors(uint64(7), gomock.Any()).Return(errors.New("disk full"))

	err := writeCheckpoint(md, &Checkpoint{Phase: PhaseStarted})
	if err == nil {
		t.Fatal("writeCheckpoint succeeded despite a failing WriteSectors")
	}
}

func TestReadCheckpointPropagatesIOFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	md := device.NewMockDevice(ctrl)
	md.EXPECT().LengthSectors().Return(uint64(8), nil)
	md.EXPECT().ReadSectors(uint64(7), uint32(1)).Return(nil, errors.New("read error"))

	_, err := readCheckpoint(md)
	if err == nil {
		t.Fatal("readCheckpoint succeeded despite a failing ReadSectors")
	}
}

func TestClearCheckpointPropagatesSyncFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	md := device.NewMockDevice(ctrl)
	md.EXPECT().LengthSectors().Return(uint64(8), nil)
	md.EXPECT().SectorSize().Return(uint32(512))
	md.EXPECT().WriteSectors(uint64(7), gomock.Any()).Return(nil)
	md.EXPECT().Sync().Return(errors.New("sync failure"))

	if err := clearCheckpoint(md); err == nil {
		t.Fatal("clearCheckpoint succeeded despite a failing Sync")
	}
}
