package stocktaking

// NumberPrefix is the document number prefix: I2026080001.
const NumberPrefix = "I"
