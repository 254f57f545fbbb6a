package delivery

// NumberPrefix is the document number prefix: D2026080001.
const NumberPrefix = "D"
