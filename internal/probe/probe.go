// Package probe inspects shared library headers to decide whether a file is a
// native library for the host OS and which pointer width it was built for.
package probe

import (
	"bytes"
	"debug/elf"
	"debug/pe"
	"encoding/binary"
	"io"
	"strings"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/spf13/afero"
)

// HeaderSize is the number of bytes read from the start of a candidate file
const HeaderSize = 0x40

// Format is the native shared library format of an OS
type Format int

const (
	FormatELF Format = iota
	FormatPE
	FormatMachO
)

func (f Format) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatPE:
		return "pe"
	case FormatMachO:
		return "mach-o"
	default:
		return "unknown"
	}
}

// Extensions returns the file suffixes a library of this format must carry
func (f Format) Extensions() []string {
	switch f {
	case FormatELF:
		return []string{".so"}
	case FormatPE:
		return []string{".dll"}
	case FormatMachO:
		return []string{".dylib", ".jnilib"}
	default:
		return nil
	}
}

// HasExtension reports whether name ends in one of the format's suffixes
func (f Format) HasExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range f.Extensions() {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

var (
	elfMagic   = []byte(elf.ELFMAG)
	peSig      = []byte{'P', 'E', 0, 0}
	machoFat   = []byte{0xca, 0xfe, 0xba, 0xbe}
	macho64LE  = []byte{0xcf, 0xfa, 0xed, 0xfe}
	macho64BE  = []byte{0xfe, 0xed, 0xfa, 0xcf}
	macho32LE  = []byte{0xce, 0xfa, 0xed, 0xfe}
	macho32BE  = []byte{0xfe, 0xed, 0xfa, 0xce}
	mzStub     = []byte{'M', 'Z'}
	peOffsetAt = 0x3c
)

// File returns the width of the library at path, or core.WidthNone when the
// file is missing, too short, has the wrong suffix or the wrong magic bytes.
func File(fs afero.Fs, path string, format Format) core.Width {
	if !format.HasExtension(path) {
		return core.WidthNone
	}

	f, err := fs.Open(path)
	if err != nil {
		return core.WidthNone
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return core.WidthNone
	}

	switch format {
	case FormatELF:
		return ELF(header)
	case FormatMachO:
		return MachO(header)
	case FormatPE:
		return PE(header, f)
	default:
		return core.WidthNone
	}
}

// ELF decodes the width from the EI_CLASS byte of an ELF header
func ELF(header []byte) core.Width {
	if len(header) < HeaderSize || !bytes.Equal(header[:len(elfMagic)], elfMagic) {
		return core.WidthNone
	}
	switch elf.Class(header[elf.EI_CLASS]) {
	case elf.ELFCLASS32:
		return core.Width32
	case elf.ELFCLASS64:
		return core.Width64
	default:
		return core.WidthNone
	}
}

// MachO decodes thin and universal Mach-O headers in either byte order
func MachO(header []byte) core.Width {
	if len(header) < HeaderSize {
		return core.WidthNone
	}
	magic := header[:4]

	// Java class files share the fat magic; a small arch count tells them apart.
	if bytes.Equal(magic, machoFat) {
		n := binary.BigEndian.Uint32(header[4:8])
		if n >= 1 && n < 20 {
			return core.Width32 | core.Width64
		}
		return core.WidthNone
	}

	if bytes.Equal(magic, macho64LE) || bytes.Equal(magic, macho64BE) {
		return core.Width64
	}
	if bytes.Equal(magic, macho32LE) || bytes.Equal(magic, macho32BE) {
		return core.Width32
	}
	return core.WidthNone
}

// PE follows the MZ stub to the COFF header and decodes its characteristics.
// Only DLLs are accepted.
func PE(header []byte, r io.ReaderAt) core.Width {
	if len(header) < HeaderSize || !bytes.Equal(header[:2], mzStub) {
		return core.WidthNone
	}

	offset := int64(binary.LittleEndian.Uint32(header[peOffsetAt : peOffsetAt+4]))
	coff := make([]byte, 4+binary.Size(pe.FileHeader{}))
	if n, _ := r.ReadAt(coff, offset); n < len(coff) {
		return core.WidthNone
	}
	if !bytes.Equal(coff[:4], peSig) {
		return core.WidthNone
	}

	var fh pe.FileHeader
	if err := binary.Read(bytes.NewReader(coff[4:]), binary.LittleEndian, &fh); err != nil {
		return core.WidthNone
	}
	if fh.Characteristics&pe.IMAGE_FILE_DLL == 0 {
		return core.WidthNone
	}
	if fh.Characteristics&pe.IMAGE_FILE_32BIT_MACHINE != 0 {
		return core.Width32
	}
	return core.Width64
}

// Accepts reports whether the library at path is loadable by a host of the given width
func Accepts(fs afero.Fs, path string, format Format, host core.Width) bool {
	return File(fs, path, format).Accepts(host)
}
