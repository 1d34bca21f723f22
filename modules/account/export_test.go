package account

var ClassifyDuplicate = classifyDuplicate
