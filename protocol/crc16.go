package protocol

// crcLookup processes four bits at a time so the table stays small enough for
// program memory on the smallest parts
var crcLookup = [16]uint16{
	0x0000, 0x1021, 0x2042, 0x3063, 0x4084, 0x50A5, 0x60C6, 0x70E7,
	0x8108, 0x9129, 0xA14A, 0xB16B, 0xC18C, 0xD1AD, 0xE1CE, 0xF1EF,
}

// CRCInit returns the initial CRC16-CCITT value
func CRCInit() uint16 {
	return 0xFFFF
}

// CRCByte adds one byte to a running CRC16-CCITT (polynomial 0x1021)
func CRCByte(crc uint16, data byte) uint16 {
	// High nibble first
	work := byte(crc>>12) ^ (data >> 4)
	crc = (crc << 4) ^ crcLookup[work&0x0F]
	work = byte(crc>>12) ^ (data & 0x0F)
	crc = (crc << 4) ^ crcLookup[work&0x0F]
	return crc
}

// CRCData adds a block of bytes to a running CRC
func CRCData(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc = CRCByte(crc, b)
	}
	return crc
}

// CRC16 calculates the CRC16-CCITT checksum of a block
func CRC16(data []byte) uint16 {
	return CRCData(CRCInit(), data)
}
