package warehouseorder

// NumberPrefix is the document number prefix: O2026080001.
const NumberPrefix = "O"
