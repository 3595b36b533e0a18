package elasticsearch

// DefaultIndexName is the index used when none is configured.
const DefaultIndexName = "rifakat_products"

// indexMapping analyzes names with edge n-grams so partial words such as
// "snea" match, and keeps category and brand as exact keywords for filters.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":          { "type": "keyword" },
      "productName": { "type": "text", "analyzer": "english", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "brand":       { "type": "keyword", "fields": { "text": { "type": "text" } } },
      "category":    { "type": "keyword", "fields": { "text": { "type": "text" } } },
      "price":       { "type": "double" },
      "colorNames":  { "type": "text" },
      "imageUrl":    { "type": "keyword", "index": false }
    }
  }
}`
