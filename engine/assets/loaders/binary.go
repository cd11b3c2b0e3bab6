package loaders

import (
	"fmt"
	"io"
	"os"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// BinaryLoader reads compiled SPIR-V modules.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if err := ValidateSPIRV(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// ValidateSPIRV checks size alignment and the magic number.
func ValidateSPIRV(b []byte) error {
	if len(b) < 4 || len(b)%4 != 0 {
		return fmt.Errorf("SPIR-V size %d is not a non-zero multiple of 4", len(b))
	}
	if code := BytesToBytecode(b[:4]); code[0] != SPIRVMagic {
		return fmt.Errorf("bad SPIR-V magic 0x%08x", code[0])
	}
	return nil
}

// BytesToBytecode reinterprets little endian bytes as 32 bit words.
func BytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
