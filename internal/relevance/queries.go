package relevance

// PositiveQuery lists regulatory and financial-supervision vocabulary.
const PositiveQuery = `Regulation, law, statute, council, commission, article, compliance, directive, guideline, standard,
legislation, regulatory framework, policy, decree, act, provision, rule, amendment, enforcement,
supervisory authority, financial conduct, oversight, legal framework, code of practice,
prudential regulation, anti-money laundering (AML), know your customer (KYC),
sanction, financial service, banking law, securities regulation, corporate governance,
fiduciary duty, disclosure requirements, risk management, audit, inspection,
financial stability, consumer protection, data protection, privacy, cybersecurity,
financial crime, fraud prevention, capital requirement, solvency, liquidity,
market abuse, insider trading, conflict of interest, transparency, reporting obligation,
whistleblower protection, ethical standards, financial oversight, investment guideline,
tax law, fiscal policy, monetary policy, currency regulation, exchange control,
credit regulation, insurance regulation, pension regulation, derivative,
financial instrument, payment system, financial market infrastructure,
clearing, settlement, fintech, digital currency, blockchain, cryptocurrency,
initial coin offering (ICO), electronic money, payment service, crowdfunding,
peer-to-peer lending, robo-advisory, virtual asset, financial innovation`

// NegativeQuery lists website navigation and web-technology vocabulary.
const NegativeQuery = `"cookies", "submenu", "toggle", "contact", "help", "home", "about", "navigation", "footer", "header", "sidebar", "dropdown",
"sitemap", "login", "register", "user interface", "UI", "UX", "user experience", "breadcrumbs", "carousel", "slider",
"accordion", "tab", "widget", "modal", "popup", "overlay", "hamburger menu", "footer menu", "social media links",
"privacy policy", "terms of use", "disclaimer", "search bar",
"login form", "sign up", "account settings", "profile", "logout", "dashboard", "settings", "preferences",
"site map", "accessibility", "mobile menu", "responsive design", "click here", "more info", "gallery",
"webmaster", "copyright", "legal notice", "back to top", "scroll to", "navigation bar", "menu item",
"site navigation", "page layout", "layout", "theme", "template", "CSS", "HTML", "JavaScript", "web development",
"web design", "frontend", "backend", "server-side", "client-side", "framework", "library", "API", "REST", "SOAP",
"web service", "HTTP", "HTTPS", "SSL", "secure connection", "domain name", "URL", "URI", "web hosting", "cloud hosting",
"server", "database", "SQL", "NoSQL", "CMS", "content management system", "WordPress", "Joomla", "Drupal", "Magento",
"Shopify", "Wix", "Squarespace", "web page", "landing page", "homepage", "blog", "post", "comment section",
"linkedin", "flickr", "facebook", "instagram", "threads", "x", "twitter"`
