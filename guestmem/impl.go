// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package guestmem

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/efidiag/blunder"
	"github.com/NVIDIA/efidiag/stats"
)

type bufferGuestMemoryStruct struct {
	buf []byte
}

type fileGuestMemoryStruct struct {
	file   *os.File
	mapped []byte
}

func makeBufferGuestMemory(buf []byte) (gm GuestMemory) {
	gm = &bufferGuestMemoryStruct{buf: buf}
	return
}

func makeFileGuestMemory(path string, length uint64) (gm GuestMemory, err error) {
	var (
		file     *os.File
		fileInfo os.FileInfo
		mapped   []byte
	)

	file, err = os.Open(path)
	if nil != err {
		err = blunder.AddError(err, blunder.NotFoundError)
		return
	}

	if 0 == length {
		fileInfo, err = file.Stat()
		if nil != err {
			_ = file.Close()
			err = blunder.AddError(err, blunder.IOError)
			return
		}
		length = uint64(fileInfo.Size())
	}

	mapped, err = unix.Mmap(int(file.Fd()), 0, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if nil != err {
		_ = file.Close()
		err = blunder.NewError(blunder.IOError, "unix.Mmap(%v, 0, %v) failed: %v", path, length, err)
		return
	}

	gm = &fileGuestMemoryStruct{file: file, mapped: mapped}
	err = nil
	return
}

// checkRange rejects any read that would reach outside [0, length),
// including ones whose end offset would not fit in a uint64
func checkRange(offset uint64, bufLen uint64, length uint64) (err error) {
	if offset > length {
		err = blunder.NewError(blunder.GuestMemoryReadError, "read offset 0x%X beyond guest memory length 0x%X", offset, length)
		return
	}
	if bufLen > length-offset {
		err = blunder.NewError(blunder.GuestMemoryReadError, "read of 0x%X bytes at offset 0x%X beyond guest memory length 0x%X", bufLen, offset, length)
		return
	}

	err = nil
	return
}

func (bgm *bufferGuestMemoryStruct) ReadAt(offset uint64, buf []byte) (err error) {
	err = checkRange(offset, uint64(len(buf)), uint64(len(bgm.buf)))
	if nil != err {
		return
	}

	copy(buf, bgm.buf[offset:offset+uint64(len(buf))])

	stats.IncrementOperationsAndBucketedBytes(stats.GuestMemRead, uint64(len(buf)))

	err = nil
	return
}

func (bgm *bufferGuestMemoryStruct) Length() (length uint64) {
	length = uint64(len(bgm.buf))
	return
}

func (bgm *bufferGuestMemoryStruct) Close() (err error) {
	err = nil
	return
}

func (fgm *fileGuestMemoryStruct) ReadAt(offset uint64, buf []byte) (err error) {
	err = checkRange(offset, uint64(len(buf)), uint64(len(fgm.mapped)))
	if nil != err {
		return
	}

	copy(buf, fgm.mapped[offset:offset+uint64(len(buf))])

	stats.IncrementOperationsAndBucketedBytes(stats.GuestMemRead, uint64(len(buf)))

	err = nil
	return
}

func (fgm *fileGuestMemoryStruct) Length() (length uint64) {
	length = uint64(len(fgm.mapped))
	return
}

func (fgm *fileGuestMemoryStruct) Close() (err error) {
	err = unix.Munmap(fgm.mapped)
	fgm.mapped = nil

	closeErr := fgm.file.Close()
	if nil == err {
		err = closeErr
	}

	return
}
