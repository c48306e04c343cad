package search

// Static domain policy. Major ecommerce storefronts are allowed; editorial,
// review, and forum sites are excluded so candidates are buyable pages rather
// than articles about them.

func EcommerceDomains() []string {
	return []string{
		"amazon.com",
		"amazon.co.uk",
		"amazon.ca",
		"amazon.com.au",
		"ebay.com",
		"walmart.com",
		"target.com",
		"bestbuy.com",
		"costco.com",
		"homedepot.com",
		"lowes.com",
		"macys.com",
		"nordstrom.com",
		"zappos.com",
		"rei.com",
		"adidas.com",
		"nike.com",
		"apple.com",
		"samsung.com",
		"sony.com",
		"bose.com",
		"shopify.com",
		"etsy.com",
		"wayfair.com",
		"overstock.com",
		"newegg.com",
		"bhphotovideo.com",
		"adorama.com",
	}
}

func ExcludedDomains() []string {
	return []string{
		"reddit.com",
		"quora.com",
		"medium.com",
		"wikipedia.org",
		"cnn.com",
		"bbc.com",
		"nytimes.com",
		"theverge.com",
		"techcrunch.com",
		"wired.com",
		"cnet.com",
		"pcmag.com",
		"soundguys.com",
		"rtings.com",
		"reviewgeek.com",
		"techradar.com",
	}
}
